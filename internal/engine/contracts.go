package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/entropy"
	"github.com/talgya/lobster-tycoon/internal/social"
)

// maxActiveContracts caps how many contracts can run at once.
const maxActiveContracts = 3

var contractClients = []string{
	"Harborside Inn", "Bayview Resort", "Pemaquid Lobster Pound",
	"Casco Bay Catering", "Blue Hill Yacht Club", "Boston Fish Pier",
}

// generateContractOffers rolls today's contract offers. Standard contracts
// need the delivery van, premium ones the refrigerated truck.
func (g *Game) generateContractOffers() []Contract {
	e := g.effects()
	if !e.ContractsEnabled {
		return nil
	}
	cb := g.bal.Contract
	terms := g.sellTerms()
	terms.DeliveryBonus = e.DeliveryBonus

	var offers []Contract
	if g.src.Chance(cb.StandardChance) {
		client := entropy.Choice(g.src, contractClients)
		trust := g.s.NPCs.Tier(social.RoleBuyer, client)
		price := g.pricer.SellPrice(g.src, g.market(), config.GradeQuarter, trust, terms)
		weeks := g.src.Int(2, 4)
		offers = append(offers, Contract{
			ID:         g.src.ID(),
			Client:     client,
			MinGrade:   config.GradeQuarter,
			AcceptsRun: true,
			PerWeek:    g.src.Int(30, 80),
			Weeks:      weeks,
			WeeksLeft:  weeks,
			PricePerLb: g.pricer.Adjust(price, cb.StandardMod),
		})
	}
	if e.PremiumContracts && g.src.Chance(cb.PremiumChance) {
		client := entropy.Choice(g.src, contractClients)
		trust := g.s.NPCs.Tier(social.RoleBuyer, client)
		weeks := g.src.Int(3, 6)
		offers = append(offers, Contract{
			ID:         g.src.ID(),
			Client:     client,
			Premium:    true,
			MinGrade:   config.GradeSelect,
			PerWeek:    g.src.Int(50, 120),
			Weeks:      weeks,
			WeeksLeft:  weeks,
			PricePerLb: g.pricer.SellPrice(g.src, g.market(), config.GradeSelect, trust, terms),
		})
	}
	return offers
}

// AcceptContract signs one of today's offers.
func (g *Game) AcceptContract(id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := slices.IndexFunc(g.s.ContractOffers, func(c Contract) bool { return c.ID == id })
	if i < 0 {
		return false, fmt.Errorf("accept contract %s: %w", id, ErrUnknownContract)
	}
	if len(g.s.ActiveContracts) >= maxActiveContracts {
		return g.reject("You can run at most %d contracts", maxActiveContracts), nil
	}
	c := g.s.ContractOffers[i]
	g.s.ContractOffers = slices.Delete(g.s.ContractOffers, i, i+1)
	g.s.ActiveContracts = append(g.s.ActiveContracts, c)
	g.emit(CatContract, "Signed with %s: %d lbs/week for %d weeks at %s/lb",
		c.Client, c.PerWeek, c.Weeks, money(c.PricePerLb))
	return true, nil
}

// contractGrades lists the grades a contract takes, lowest acceptable first
// so better stock stays free for buyers paying for it.
func contractGrades(c Contract) []config.Grade {
	var out []config.Grade
	rank := config.GradeRank(c.MinGrade)
	for i := len(config.Grades) - 1; i >= 0; i-- {
		g := config.Grades[i].Grade
		if g == config.GradeRun {
			if c.AcceptsRun {
				out = append(out, g)
			}
			continue
		}
		if config.GradeRank(g) <= rank {
			out = append(out, g)
		}
	}
	return out
}

// DeliverToContract ships up to amount lbs toward this week's quota; amount
// <= 0 ships whatever the quota still needs.
func (g *Game) DeliverToContract(id string, amount int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := slices.IndexFunc(g.s.ActiveContracts, func(c Contract) bool { return c.ID == id })
	if i < 0 {
		return false, fmt.Errorf("deliver to %s: %w", id, ErrUnknownContract)
	}
	if g.s.Over() {
		return g.reject("The season is over"), nil
	}
	c := &g.s.ActiveContracts[i]
	need := c.PerWeek - c.DeliveredWeek
	if need <= 0 {
		return g.reject("%s has its lobster for this week", c.Client), nil
	}
	if amount <= 0 || amount > need {
		amount = need
	}

	grades := contractGrades(*c)
	held := 0
	for _, grade := range grades {
		held += g.s.Ledger.Amount(grade)
	}
	if held == 0 {
		return g.reject("No stock good enough for %s", c.Client), nil
	}

	price := c.PricePerLb
	sold, revenue := g.sellStock(grades, amount, func(config.Grade) float64 { return price })
	c.DeliveredWeek += sold
	c.DeliveredTotal += sold
	g.s.NPCs.RecordInteraction(social.RoleBuyer, c.Client, sold)
	g.s.Stats.BuyerSales[c.Client] += sold

	g.emit(CatContract, "Delivered %d lbs to %s for %s (%d/%d this week)",
		sold, c.Client, money(revenue), c.DeliveredWeek, c.PerWeek)
	g.verify("deliver")
	g.checkAchievements()
	return true, nil
}

// settleContractWeek closes the contract week: shortfalls are fined and
// cost trust, finished contracts are retired.
func (g *Game) settleContractWeek() {
	kept := g.s.ActiveContracts[:0]
	for _, c := range g.s.ActiveContracts {
		if missing := c.PerWeek - c.DeliveredWeek; missing > 0 {
			penalty := economy.Cost(missing, c.PricePerLb*g.bal.Finance.ContractShortfallPc)
			g.spend(penalty)
			g.s.NPCs.Adjust(social.RoleBuyer, c.Client, -g.bal.Trust.ContractMiss)
			g.s.Stats.ContractsMissed++
			g.emit(CatContract, "%s was %d lbs short: fined %s", c.Client, missing, money(penalty))
		}
		c.WeeksLeft--
		c.DeliveredWeek = 0
		if c.WeeksLeft <= 0 {
			g.s.Stats.ContractsCompleted++
			g.s.NPCs.Adjust(social.RoleBuyer, c.Client, g.bal.Contract.CompletionRep)
			g.emit(CatContract, "Contract with %s complete", c.Client)
			continue
		}
		kept = append(kept, c)
	}
	g.s.ActiveContracts = kept
}

// Contracts returns today's offers and the running contracts.
func (g *Game) Contracts() (offers, active []Contract) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.s.ContractOffers), slices.Clone(g.s.ActiveContracts)
}
