package engine

import (
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/entropy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// buyerSlots is how many buyer offers are rolled today.
func (g *Game) buyerSlots() int {
	return max(1, g.bal.Supply.BaseBuyers+g.s.Reputation.Tier().Index+g.town().BuyerBonus)
}

// buyerWeight is a buyer type's pick weight at the current town, zero when
// the player's reputation has not unlocked it.
func (g *Game) buyerWeight(bt config.BuyerType) float64 {
	if bt.MinRepTier > g.s.Reputation.Tier().Index {
		return 0
	}
	w := bt.Weight
	t := g.town()
	switch bt.Kind {
	case config.BuyerSpecial:
		if t.HasTrait(config.TraitTourist) {
			w *= 2
		}
	case config.BuyerRestaurant:
		if t.HasTrait(config.TraitFishingHub) {
			w *= 0.5
		}
		if t.HasTrait(config.TraitWealthy) {
			w *= 1.5
		}
	}
	return w
}

// generateBuyers rolls today's buyers. The first slot is always a
// wholesaler; the others are weather-gated picks among unlocked types.
func (g *Game) generateBuyers() []Buyer {
	sea := config.WeatherData(g.s.Weather)
	weights := make([]float64, len(config.BuyerTypes))
	for i, bt := range config.BuyerTypes {
		weights[i] = g.buyerWeight(bt)
	}

	var buyers []Buyer
	for slot := 0; slot < g.buyerSlots(); slot++ {
		if slot == 0 {
			wholesaler, _ := config.BuyerTypeFor(config.BuyerWholesaler)
			buyers = append(buyers, g.rollBuyer(wholesaler, 1))
			continue
		}
		if !g.src.Chance(sea.BuyerMod) {
			continue
		}
		idx := g.src.Weighted(weights)
		if idx < 0 {
			continue
		}
		buyers = append(buyers, g.rollBuyer(config.BuyerTypes[idx], 1))
	}
	return buyers
}

// rollBuyer builds one buyer offer; priceMod scales the offered price.
func (g *Game) rollBuyer(bt config.BuyerType, priceMod float64) Buyer {
	name := entropy.Choice(g.src, bt.Names)
	npc := g.s.NPCs.Get(social.RoleBuyer, name)
	trust := social.TierFor(npc.Trust)

	want := g.src.Int(bt.WantMin, bt.WantMax)
	if npc.Trust > 0 {
		want += npc.Trust / 10
	}
	if bonus := g.town().BuyerBonus; bonus >= 0 {
		want += 5 * bonus
	}

	price := g.pricer.SellPrice(g.src, g.market(), bt.PriceGrade, trust, g.sellTerms())
	price = g.pricer.Adjust(price, bt.PriceMod*priceMod)

	return Buyer{
		ID:          g.src.ID(),
		Name:        name,
		Kind:        bt.Kind,
		Accepts:     slices.Clone(bt.Accepts),
		AcceptsRun:  slices.Contains(bt.Accepts, config.GradeRun) || (bt.RunIfUngraded && !g.effects().GradingEnabled),
		PriceGrade:  bt.PriceGrade,
		WantsAmount: want,
		PricePerLb:  price,
		Needs:       bt.NeedsEquipment,
	}
}

func (g *Game) buyerIndex(id string) int {
	return slices.IndexFunc(g.s.Buyers, func(b Buyer) bool { return b.ID == id })
}

// sellOrder is the grades a buyer takes, best first, with ungraded stock
// last when accepted.
func sellOrder(b Buyer) []config.Grade {
	order := make([]config.Grade, 0, len(b.Accepts)+1)
	for _, g := range b.Accepts {
		if g != config.GradeRun {
			order = append(order, g)
		}
	}
	if b.AcceptsRun {
		order = append(order, config.GradeRun)
	}
	return order
}

// sellable returns how many lbs the player could sell this buyer right now
// and why not when zero.
func (g *Game) sellable(b Buyer) (int, string) {
	if g.s.Over() {
		return 0, "the game is over"
	}
	if b.Needs != "" && !g.owns(b.Needs) {
		eq, _ := config.EquipmentByID(b.Needs)
		return 0, b.Name + " needs a " + eq.Name
	}
	if b.WantsAmount <= 0 {
		return 0, b.Name + " is not buying"
	}
	held := 0
	for _, grade := range sellOrder(b) {
		held += g.s.Ledger.Amount(grade)
	}
	if held == 0 {
		return 0, "no stock " + b.Name + " will take"
	}
	return min(held, b.WantsAmount), ""
}

// BuyerOffer is a buyer as the host sees it: the offer plus whether the
// player can fill any of it right now.
type BuyerOffer struct {
	Buyer
	CanSell  bool   `json:"can_sell"`
	Sellable int    `json:"sellable"`
	Reason   string `json:"reason,omitempty"`
}

// Buyers lists today's buyer offers, including ones the player cannot fill.
func (g *Game) Buyers() []BuyerOffer {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]BuyerOffer, len(g.s.Buyers))
	for i, b := range g.s.Buyers {
		n, reason := g.sellable(b)
		b.Accepts = slices.Clone(b.Accepts)
		out[i] = BuyerOffer{Buyer: b, CanSell: n > 0, Sellable: n, Reason: reason}
	}
	return out
}
