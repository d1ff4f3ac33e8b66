package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// maxBoats is the number of boat slots rolled today.
func (g *Game) maxBoats() int {
	return max(1, g.bal.Supply.BaseMaxBoats+g.effects().ExtraBoats+g.town().BoatBonus)
}

// generateBoats rolls today's boats at the current town. Each slot is a
// chance roll; an empty dock is a normal outcome.
func (g *Game) generateBoats() []Boat {
	season := config.SeasonData(g.s.Season)
	sea := config.WeatherData(g.s.Weather)
	chance := season.BoatChance * sea.BoatMod

	var boats []Boat
	for i := 0; i < g.maxBoats(); i++ {
		if !g.src.Chance(chance) {
			continue
		}
		boats = append(boats, g.rollBoat(1))
	}
	return boats
}

// rollBoat builds one boat offer; priceMod scales the captain's asking price.
func (g *Game) rollBoat(priceMod float64) Boat {
	idx := g.src.Weighted(boatWeights())
	if idx < 0 {
		idx = 0
	}
	bt := config.BoatTypes[idx]
	captain := g.pickCaptain()
	// get-or-create keeps the captain's trust across days
	g.s.NPCs.Get(social.RoleSeller, captain.Name)
	trust := g.s.NPCs.Tier(social.RoleSeller, captain.Name)

	amount := int(math.Round(float64(g.src.Int(bt.CatchMin, bt.CatchMax)) * captain.CatchModifier))
	price := g.pricer.BuyPrice(g.src, g.market(), g.bal.Supply.BaselineGrade, trust)
	variance := g.src.Float(-captain.PriceVariance, captain.PriceVariance)
	price = g.pricer.Adjust(price, (1+bt.QualityBias)*(1+variance)*priceMod*g.captainPremium(captain.Name))

	return Boat{
		ID:          g.src.ID(),
		Name:        entropy.Choice(g.src, config.BoatNames),
		Type:        bt.ID,
		Captain:     captain.Name,
		CatchAmount: max(1, amount),
		PricePerLb:  price,
		TimeLeft:    bt.TimerSecs,
		Day:         g.s.Day,
	}
}

func boatWeights() []float64 {
	w := make([]float64, len(config.BoatTypes))
	for i, bt := range config.BoatTypes {
		w[i] = bt.Weight
	}
	return w
}

func (g *Game) boatIndex(id string) int {
	return slices.IndexFunc(g.s.Boats, func(b Boat) bool { return b.ID == id })
}

func (g *Game) removeBoat(i int) {
	g.s.Boats = slices.Delete(g.s.Boats, i, i+1)
}

// PassBoat waves a boat off. The offer is gone with no other effect.
func (g *Game) PassBoat(id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.boatIndex(id)
	if i < 0 {
		return false, fmt.Errorf("pass %s: %w", id, ErrUnknownBoat)
	}
	boat := g.s.Boats[i]
	g.removeBoat(i)
	g.s.Stats.BoatsPassed++
	g.emit(CatTrade, "Passed on %s (%s)", boat.Name, boat.Captain)
	return true, nil
}

// Tick runs the boat countdowns forward by elapsed seconds and returns the
// boats whose offers ran out. Each expired catch goes to a rival.
func (g *Game) Tick(elapsed float64) []Boat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tick(g.s.Day, elapsed)
}

// TickAt is Tick for a host that measured elapsed time during day. Ticks
// measured on an earlier day are dropped so they never touch a later day's
// boats.
func (g *Game) TickAt(day int, elapsed float64) []Boat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tick(day, elapsed)
}

func (g *Game) tick(day int, elapsed float64) []Boat {
	if elapsed <= 0 || day != g.s.Day || g.s.Over() {
		return nil
	}

	var expired []Boat
	kept := g.s.Boats[:0]
	for _, b := range g.s.Boats {
		if b.Day != day {
			// left over from an earlier day; never live
			continue
		}
		b.TimeLeft -= elapsed
		if b.TimeLeft <= 0 {
			b.TimeLeft = 0
			expired = append(expired, b)
			continue
		}
		kept = append(kept, b)
	}
	g.s.Boats = kept

	for _, b := range expired {
		g.loseToRival(b)
	}
	return expired
}
