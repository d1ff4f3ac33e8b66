package engine

import (
	"math"
	"slices"
	"sort"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/entropy"
)

func newRivals() []RivalState {
	out := make([]RivalState, len(config.Rivals))
	for i, r := range config.Rivals {
		out[i] = RivalState{ID: r.ID, Name: r.Name, Personality: r.Personality, Cash: r.StartingCash}
	}
	return out
}

func rivalTemplate(id string) config.Rival {
	for _, r := range config.Rivals {
		if r.ID == id {
			return r
		}
	}
	return config.Rival{ID: id, Name: id, BidStyle: 1}
}

// bidPrice is what a rival pays per lb for a boat.
func bidPrice(r config.Rival, boat Boat) float64 {
	return boat.PricePerLb * r.BidStyle
}

// wants reports whether a rival would go for a boat today.
func (g *Game) wants(r *RivalState, boat Boat) bool {
	tmpl := rivalTemplate(r.ID)
	cost := economy.Cost(boat.CatchAmount, bidPrice(tmpl, boat))
	if r.Cash < g.bal.Rivals.MinCash+cost {
		return false
	}
	switch r.Personality {
	case config.Conservative:
		return boat.PricePerLb < g.bal.Rivals.GoodDealPrice
	case config.Chaotic:
		return g.src.Chance(0.6)
	default:
		return true
	}
}

func (g *Game) urgency(r *RivalState) float64 {
	if r.Personality == config.Chaotic {
		return g.src.Float64()
	}
	return rivalTemplate(r.ID).Urgency
}

// mostUrgent picks the rival most keen on a boat from ids, or nil.
func (g *Game) mostUrgent(ids []string) *RivalState {
	var best *RivalState
	bestU := -1.0
	for i := range g.s.Rivals {
		r := &g.s.Rivals[i]
		if !slices.Contains(ids, r.ID) {
			continue
		}
		if u := g.urgency(r); u > bestU {
			best, bestU = r, u
		}
	}
	return best
}

// rivalsBid lets the rivals look over fresh boats. Some catches are snapped
// up before the player sees them; the rest carry the rivals' interest.
func (g *Game) rivalsBid(boats []Boat) []Boat {
	kept := boats[:0]
	for _, b := range boats {
		if slices.Contains(g.s.Stories.Exclusive, b.Captain) {
			kept = append(kept, b)
			continue
		}
		var ids []string
		for i := range g.s.Rivals {
			if g.wants(&g.s.Rivals[i], b) {
				ids = append(ids, g.s.Rivals[i].ID)
			}
		}
		if len(ids) > 0 && g.src.Chance(g.bal.Rivals.ActChance) {
			if r := g.mostUrgent(ids); r != nil {
				g.rivalTakes(r, b)
				continue
			}
		}
		b.Interested = ids
		kept = append(kept, b)
	}
	return kept
}

// loseToRival hands an expired boat to a rival: the keenest interested one,
// or any rival when nobody bid. A rival who cannot pay for the catch lets it
// sail off.
func (g *Game) loseToRival(b Boat) {
	var r *RivalState
	if len(b.Interested) > 0 {
		r = g.mostUrgent(b.Interested)
	}
	if r == nil && len(g.s.Rivals) > 0 {
		r = &g.s.Rivals[g.src.Int(0, len(g.s.Rivals)-1)]
	}
	if r != nil && r.Cash < economy.Cost(b.CatchAmount, bidPrice(rivalTemplate(r.ID), b)) {
		r = nil
	}
	if r == nil {
		g.s.Stats.LostToRivals++
		g.emit(CatRival, "%s sailed off with %d lbs", b.Name, b.CatchAmount)
		return
	}
	g.rivalTakes(r, b)
}

func (g *Game) rivalTakes(r *RivalState, b Boat) {
	tmpl := rivalTemplate(r.ID)
	cost := economy.Cost(b.CatchAmount, bidPrice(tmpl, b))
	r.Cash = economy.RoundCents(r.Cash - cost)
	r.Inventory += b.CatchAmount
	r.BoatsWon++
	g.s.Stats.LostToRivals++

	msg := "%s bought %s's %d lbs"
	if len(tmpl.Taunts) > 0 {
		g.emit(CatRival, msg+" \"%s\"", r.Name, b.Captain, b.CatchAmount, entropy.Choice(g.src, tmpl.Taunts))
		return
	}
	g.emit(CatRival, msg, r.Name, b.Captain, b.CatchAmount)
}

// rivalsSell moves rival stock at end of day.
func (g *Game) rivalsSell() {
	for i := range g.s.Rivals {
		r := &g.s.Rivals[i]
		if r.Inventory <= g.bal.Rivals.SellThreshold || !g.src.Chance(0.5) {
			continue
		}
		share := g.src.Float(0.3, 0.6)
		n := int(math.Floor(float64(r.Inventory) * share))
		price := g.src.Float(g.bal.Rivals.SellPriceMin, g.bal.Rivals.SellPriceMax)
		r.Inventory -= n
		r.Cash = economy.RoundCents(r.Cash + economy.Cost(n, price))
	}
}

// Standing is one row of the dealer leaderboard.
type Standing struct {
	Name     string  `json:"name"`
	NetWorth float64 `json:"net_worth"`
	Player   bool    `json:"player"`
}

// Standings ranks the player and rivals by net worth, richest first.
func (g *Game) Standings() []Standing {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.standings()
}

func (g *Game) standings() []Standing {
	rows := []Standing{{Name: "You", NetWorth: g.netWorth(), Player: true}}
	for _, r := range g.s.Rivals {
		rows = append(rows, Standing{
			Name:     r.Name,
			NetWorth: r.Cash + g.bal.InventoryValuePerLb*float64(r.Inventory),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].NetWorth > rows[j].NetWorth })
	return rows
}
