package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// BuyFromBoat buys amount lbs of a boat's catch; amount <= 0 means the whole
// catch. It returns false, changing nothing, when the catch, tank space or
// cash cannot cover the purchase.
func (g *Game) BuyFromBoat(id string, amount int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.boatIndex(id)
	if i < 0 {
		return false, fmt.Errorf("buy from %s: %w", id, ErrUnknownBoat)
	}
	if g.s.Over() {
		return g.reject("The season is over"), nil
	}
	boat := &g.s.Boats[i]
	if amount <= 0 {
		amount = boat.CatchAmount
	}

	space := g.capacity() - g.s.Ledger.Total()
	cost := economy.Cost(amount, boat.PricePerLb)
	switch {
	case amount > boat.CatchAmount:
		return g.reject("%s only has %d lbs", boat.Name, boat.CatchAmount), nil
	case amount > space:
		return g.reject("Tank space for %d lbs only", max(0, space)), nil
	case cost > g.s.Cash:
		return g.reject("Need %s, have %s", money(cost), money(g.s.Cash)), nil
	}

	g.spend(cost)
	boat.CatchAmount -= amount
	captain, name := boat.Captain, boat.Name
	price := boat.PricePerLb
	// a boat counts as beaten once, when the player takes the last of it
	beaten := boat.CatchAmount == 0 && len(boat.Interested) > 0
	if boat.CatchAmount == 0 {
		g.removeBoat(i)
	}

	parts := g.grade(amount)
	if spot := g.s.Stories.SecretSpot; spot != "" && captain == spot {
		parts = []gradePart{{config.GradeSelect, amount}}
	}
	for _, part := range parts {
		g.s.Ledger.AddLot(g.src.ID(), part.grade, part.amount, 100, g.decayRate(), g.s.Day)
	}

	g.s.NPCs.RecordInteraction(social.RoleSeller, captain, amount)
	g.s.Stats.TotalBought += amount
	g.s.Stats.CaptainDeals[captain]++
	g.s.DailyBought += amount
	if beaten {
		g.s.Stats.RivalsOutbid++
	}

	g.emit(CatTrade, "Bought %d lbs from %s (%s) at %s/lb for %s", amount, captain, name, money(price), money(cost))
	g.log.Debug("buy", "boat", id, "amount", amount, "price", price, "cost", cost, "cash", g.s.Cash)
	g.verify("buy")
	g.checkAchievements()
	return true, nil
}

type gradePart struct {
	grade  config.Grade
	amount int
}

// grade splits a purchase into grades. Without a grading table everything
// stays ungraded.
func (g *Game) grade(amount int) []gradePart {
	if !g.effects().GradingEnabled {
		return []gradePart{{config.GradeRun, amount}}
	}
	sb := g.bal.Supply
	sel := int(math.Round(float64(amount) * g.src.Float(sb.GradeSelectLo, sb.GradeSelectHi)))
	quart := min(amount-sel, int(math.Round(float64(amount)*g.src.Float(sb.GradeQuartLo, sb.GradeQuartHi))))
	chix := max(0, amount-sel-quart)
	return []gradePart{
		{config.GradeSelect, sel},
		{config.GradeQuarter, quart},
		{config.GradeChix, chix},
	}
}

// SellToBuyer sells up to amount lbs to a buyer, best accepted grade first;
// amount <= 0 fills the whole order. Returns false when the player has
// nothing the buyer takes.
func (g *Game) SellToBuyer(id string, amount int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.buyerIndex(id)
	if i < 0 {
		return false, fmt.Errorf("sell to %s: %w", id, ErrUnknownBuyer)
	}
	b := &g.s.Buyers[i]
	if _, reason := g.sellable(*b); reason != "" {
		return g.reject("Can't sell to %s: %s", b.Name, reason), nil
	}
	if amount <= 0 || amount > b.WantsAmount {
		amount = b.WantsAmount
	}

	base, _ := config.GradeData(b.PriceGrade)
	sold, revenue := g.sellStock(sellOrder(*b), amount, func(grade config.Grade) float64 {
		info, _ := config.GradeData(grade)
		return b.PricePerLb * info.SellMod / base.SellMod
	})

	b.WantsAmount -= sold
	name := b.Name
	if b.WantsAmount <= 0 {
		g.s.Buyers = slices.Delete(g.s.Buyers, i, i+1)
	}

	g.s.NPCs.RecordInteraction(social.RoleBuyer, name, sold)
	g.s.Stats.BuyerSales[name] += sold

	g.emit(CatTrade, "Sold %d lbs to %s for %s", sold, name, money(revenue))
	g.log.Debug("sell", "buyer", id, "amount", sold, "revenue", revenue, "cash", g.s.Cash)
	g.verify("sell")
	g.checkAchievements()
	g.checkTradingEnd()
	return true, nil
}

// sellStock consumes up to amount lbs across grades in order and credits the
// revenue. unitPrice gives the per-lb price of a grade before the freshness
// discount.
func (g *Game) sellStock(order []config.Grade, amount int, unitPrice func(config.Grade) float64) (int, float64) {
	sold, revenue := 0, 0.0
	for _, grade := range order {
		left := amount - sold
		if left <= 0 {
			break
		}
		take := min(left, g.s.Ledger.Amount(grade))
		if take <= 0 {
			continue
		}
		price := unitPrice(grade)
		for _, p := range g.s.Ledger.RemoveLotAmount(grade, take) {
			factor := economy.FreshnessFactor(p.Freshness, g.bal.Tank.DiscountFloor)
			revenue += economy.Cost(p.Amount, price*factor)
			sold += p.Amount
			g.s.Stats.SoldByGrade[grade] += p.Amount
		}
	}
	revenue = economy.RoundCents(revenue)
	g.earn(revenue)
	g.s.Stats.TotalSold += sold
	g.s.DailySold += sold
	return sold, revenue
}

// spend debits cash for stock, kit or fees.
func (g *Game) spend(v float64) {
	g.s.Cash = economy.RoundCents(g.s.Cash - v)
	g.s.DailySpent = economy.RoundCents(g.s.DailySpent + v)
	g.s.Stats.TotalSpent = economy.RoundCents(g.s.Stats.TotalSpent + v)
}

// earn credits cash from sales.
func (g *Game) earn(v float64) {
	g.s.Cash = economy.RoundCents(g.s.Cash + v)
	g.s.DailyEarned = economy.RoundCents(g.s.DailyEarned + v)
	g.s.Stats.TotalEarned = economy.RoundCents(g.s.Stats.TotalEarned + v)
}
