package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
)

// CanTravelTo reports whether the player can travel to a town now, and the
// reason when not.
func (g *Game) CanTravelTo(id config.TownID) (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canTravelTo(id)
}

func (g *Game) canTravelTo(id config.TownID) (bool, string) {
	t, ok := config.TownByID(id)
	if !ok {
		return false, "no such town"
	}
	switch {
	case g.s.Over():
		return false, "the season is over"
	case id == g.s.Location:
		return false, "you are already in " + t.Name
	case !g.effects().TravelEnabled:
		return false, "you need a Delivery Van to travel"
	case g.s.TravelsToday >= g.bal.Finance.MaxTravelsPerDay:
		return false, "no time for another trip today"
	case g.s.Reputation.Tier().Index < t.MinRepTier:
		return false, fmt.Sprintf("%s deals only with %s dealers", t.Name, config.RepTiers[t.MinRepTier].Name)
	case t.TravelCost > g.s.Cash:
		return false, fmt.Sprintf("the trip costs %s", money(t.TravelCost))
	}
	return true, ""
}

// TravelTo drives to another town. Buyers there are fresh; boats only come
// in if the player has not already been to that dock today.
func (g *Game) TravelTo(id config.TownID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := config.TownByID(id)
	if !ok {
		return false, fmt.Errorf("travel to %s: %w", id, ErrUnknownTown)
	}
	if ok, reason := g.canTravelTo(id); !ok {
		return g.reject("Can't travel to %s: %s", t.Name, reason), nil
	}

	if t.TravelCost > 0 {
		g.spend(t.TravelCost)
	}
	g.s.Location = id
	g.s.TravelsToday++

	revisit := slices.Contains(g.s.VisitedToday, id)
	if !revisit {
		g.s.VisitedToday = append(g.s.VisitedToday, id)
	}
	if !slices.Contains(g.s.Stats.TownsVisited, id) {
		g.s.Stats.TownsVisited = append(g.s.Stats.TownsVisited, id)
	}

	g.s.Boats = nil
	if !revisit {
		g.s.Boats = g.rivalsBid(g.generateBoats())
	}
	g.s.Buyers = g.generateBuyers()

	g.emit(CatTravel, "Arrived in %s: %d boats, %d buyers", t.Name, len(g.s.Boats), len(g.s.Buyers))
	g.log.Info("travel", "town", id, "cost", t.TravelCost, "boats", len(g.s.Boats), "buyers", len(g.s.Buyers))
	g.checkAchievements()
	return true, nil
}
