package engine

import (
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// TotalInventory returns the lbs in the tank.
func (g *Game) TotalInventory() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Ledger.Total()
}

// AverageFreshness returns the amount-weighted freshness of the given grades,
// or of everything when none are given.
func (g *Game) AverageFreshness(grades ...config.Grade) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Ledger.AverageFreshness(grades...)
}

// CurrentTown returns the town the player is in.
func (g *Game) CurrentTown() config.Town {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.town()
}

// ReputationTier returns the player's reputation tier.
func (g *Game) ReputationTier() config.RepTier {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Reputation.Tier()
}

// TrustTier returns the tier of an NPC by book key (see social.Key). Unknown
// NPCs are neutral.
func (g *Game) TrustTier(key string) config.TrustTier {
	g.mu.Lock()
	defer g.mu.Unlock()
	if npc, ok := g.s.NPCs.Lookup(key); ok {
		return social.TierFor(npc.Trust)
	}
	return social.TierFor(0)
}

// Capacity returns the tank capacity with owned upgrades.
func (g *Game) Capacity() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capacity()
}

// Effects returns the combined effect of owned upgrades.
func (g *Game) Effects() config.Effects {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.effects()
}

// NetWorth is cash less debt plus a flat valuation of the tank.
func (g *Game) NetWorth() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.netWorth()
}

// Day returns the current day number.
func (g *Game) Day() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Day
}

// Over reports whether the game has ended, and how.
func (g *Game) Over() (bool, Outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Over(), g.s.Outcome
}

// Boats lists today's boat offers.
func (g *Game) Boats() []Boat {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Boat, len(g.s.Boats))
	for i, b := range g.s.Boats {
		b.Interested = slices.Clone(b.Interested)
		out[i] = b
	}
	return out
}

// Events returns the events logged since sequence number from, plus the
// sequence number to ask for next. Events trimmed from the log are skipped.
func (g *Game) Events(from int) ([]Event, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.s.Events)
	start := from - (g.s.EventCount - n)
	start = max(0, min(start, n))
	return slices.Clone(g.s.Events[start:]), g.s.EventCount
}

// FavoriteCaptain is the captain the player has bought from most often.
func (g *Game) FavoriteCaptain() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return topOf(g.s.Stats.CaptainDeals)
}

// BestBuyer is the buyer the player has sold the most lbs to.
func (g *Game) BestBuyer() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return topOf(g.s.Stats.BuyerSales)
}

// topOf returns the key with the largest count, ties broken by name.
func topOf(m map[string]int) (string, int) {
	best, n := "", 0
	for k, v := range m {
		if v > n || (v == n && v > 0 && k < best) {
			best, n = k, v
		}
	}
	return best, n
}
