package engine

import (
	"fmt"
	"math"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
)

// BuyEquipment buys an upgrade. Owned items, missing prerequisites and short
// cash are rejections.
func (g *Game) BuyEquipment(id config.EquipmentID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	eq, ok := config.EquipmentByID(id)
	if !ok {
		return false, fmt.Errorf("buy equipment %s: %w", id, ErrUnknownEquipment)
	}
	if g.s.Over() {
		return g.reject("The season is over"), nil
	}
	if g.owns(id) {
		return g.reject("You already own a %s", eq.Name), nil
	}
	if eq.Requires != "" && !g.owns(eq.Requires) {
		req, _ := config.EquipmentByID(eq.Requires)
		return g.reject("%s requires a %s", eq.Name, req.Name), nil
	}
	if eq.Cost > g.s.Cash {
		return g.reject("Need %s for a %s", money(eq.Cost), eq.Name), nil
	}

	g.spend(eq.Cost)
	g.s.Equipment = append(g.s.Equipment, id)
	g.emit(CatFinance, "Bought %s for %s", eq.Name, money(eq.Cost))
	g.log.Info("equipment bought", "item", id, "cost", eq.Cost, "cash", g.s.Cash)

	// Freshly unlocked buyers can take ungraded stock only while nothing
	// grades it.
	if eq.Effects.GradingEnabled {
		for i := range g.s.Buyers {
			b := &g.s.Buyers[i]
			if bt, ok := config.BuyerTypeFor(b.Kind); ok && bt.RunIfUngraded {
				b.AcceptsRun = false
			}
		}
	}
	g.checkAchievements()
	return true, nil
}

// MaxLoan is the largest loan the bank would write today.
func (g *Game) MaxLoan() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxLoan()
}

func (g *Game) maxLoan() float64 {
	return math.Max(g.bal.Finance.MinLoanCap, g.bal.Finance.LoanCashMultiple*g.s.Cash)
}

// TakeLoan borrows amount. Only one loan can be outstanding at a time.
func (g *Game) TakeLoan(amount float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	amount = economy.RoundCents(amount)
	switch {
	case g.s.Over():
		return g.reject("The season is over")
	case g.s.Debt > 0:
		return g.reject("Pay off your %s loan first", money(g.s.Debt))
	case amount <= 0:
		return g.reject("Loan amount must be positive")
	case amount > g.maxLoan():
		return g.reject("The bank will lend at most %s", money(g.maxLoan()))
	}

	g.s.Cash = economy.RoundCents(g.s.Cash + amount)
	g.s.Debt = amount
	g.s.Stats.LoansTaken++
	g.s.Stats.WasInDebt = true
	g.emit(CatFinance, "Borrowed %s at %.0f%% weekly", money(amount), g.bal.Finance.WeeklyInterest*100)
	g.checkAchievements()
	return true
}

// PayLoan repays up to amount of the debt; amount <= 0 repays as much as
// cash allows.
func (g *Game) PayLoan(amount float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.s.Debt <= 0 {
		return g.reject("You have no loan")
	}
	if amount <= 0 {
		amount = math.Min(g.s.Debt, g.s.Cash)
	}
	amount = economy.RoundCents(math.Min(amount, g.s.Debt))
	if amount <= 0 || amount > g.s.Cash {
		return g.reject("Not enough cash to pay %s", money(amount))
	}

	g.s.Cash = economy.RoundCents(g.s.Cash - amount)
	g.s.Debt = economy.RoundCents(g.s.Debt - amount)
	g.emit(CatFinance, "Repaid %s, %s still owed", money(amount), money(g.s.Debt))
	if g.s.Debt == 0 {
		g.s.Stats.LoansPaidOff++
		g.emit(CatFinance, "Loan paid off")
	}
	g.checkAchievements()
	return true
}

// accrueInterest adds a week's interest to the debt, rounded up to the dollar.
func (g *Game) accrueInterest() float64 {
	if g.s.Debt <= 0 {
		return 0
	}
	interest := economy.CeilDollars(g.s.Debt, g.bal.Finance.WeeklyInterest)
	g.s.Debt = economy.RoundCents(g.s.Debt + interest)
	g.s.Stats.InterestAccrued = economy.RoundCents(g.s.Stats.InterestAccrued + interest)
	g.emit(CatFinance, "Weekly interest of %s added to your loan", money(interest))
	return interest
}

// chargeOperating takes the daily running cost of the business.
func (g *Game) chargeOperating() float64 {
	f := g.bal.Finance
	cost := f.OperatingBase + math.Floor(f.OperatingPerLb*float64(g.s.Ledger.Total()))
	g.spend(cost)
	g.s.Stats.OperatingCosts = economy.RoundCents(g.s.Stats.OperatingCosts + cost)
	return cost
}
