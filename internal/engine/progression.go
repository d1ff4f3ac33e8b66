package engine

import (
	"context"
	"log/slog"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
	"github.com/talgya/lobster-tycoon/internal/social"
	"github.com/talgya/lobster-tycoon/internal/weather"
)

// DaysPerWeek sets the interest and contract cycle.
const DaysPerWeek = 7

// DayReport sums up one end-of-day pass.
type DayReport struct {
	Day           int              `json:"day"` // the day that ended
	Mortality     int              `json:"mortality"`
	Rot           int              `json:"rot"`
	OperatingCost float64          `json:"operating_cost"`
	Weekly        bool             `json:"weekly"`
	Interest      float64          `json:"interest"`
	Profit        float64          `json:"profit"`
	Reputation    social.RepChange `json:"-"`
	NetWorth      float64          `json:"net_worth"`
	Outcome       Outcome          `json:"outcome,omitempty"`
}

// AdvanceDay closes the current day and, unless the game ends, opens the
// next one. End of day runs in a fixed order: stock decay, running costs,
// trust and reputation settlement, rival sales, the weekly cycle, then the
// win, bankruptcy and season checks.
func (g *Game) AdvanceDay(ctx context.Context) (DayReport, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.s.Over() {
		return DayReport{}, g.reject("The season is over")
	}
	s := g.s
	report := DayReport{Day: s.Day}

	// ── Tank ──
	e := g.effects()
	loss := s.Ledger.ProcessDailyDecay(economy.DecayParams{
		BaseMortality:     economy.Mortality(e, g.bal.Tank.BaseMortality),
		DecayMod:          economy.DecayMod(e),
		MortalityScale:    g.bal.Tank.MortalityScale,
		CriticalFreshness: g.bal.Tank.CriticalFreshness,
		RotFraction:       g.bal.Tank.RotFraction,
	})
	for _, n := range loss.Mortality {
		report.Mortality += n
	}
	for _, n := range loss.Rot {
		report.Rot += n
	}
	s.Stats.MortalityLoss += report.Mortality
	s.Stats.RotLoss += report.Rot
	if lost := loss.Lost(); lost > 0 {
		g.emit(CatTrade, "Lost %d lbs overnight (%d died, %d spoiled)", lost, report.Mortality, report.Rot)
	}
	g.verify("decay")

	report.OperatingCost = g.chargeOperating()

	// ── Relationships ──
	for _, c := range s.NPCs.SettleDay(g.bal.Trust) {
		if c.TierChanged() {
			g.emit(CatTrust, "%s now feels %s toward you", c.Name, c.To.Name)
		}
	}
	report.Reputation = s.Reputation.SettleDay(g.bal.Rep, social.DayActivity{
		Volume:            s.DailyBought + s.DailySold,
		StartingInventory: s.DayStartInventory,
		Spoiled:           loss.Lost(),
	})
	g.reportReputation(report.Reputation)

	g.rivalsSell()
	if g.standings()[0].Player {
		s.Stats.DaysAtTop++
	}
	g.lapseStory()

	// ── Weekly ──
	if s.Day%DaysPerWeek == 0 {
		report.Weekly = true
		report.Interest = g.accrueInterest()
		g.settleContractWeek()
	}

	report.Profit = economy.RoundCents(s.DailyEarned - s.DailySpent)
	if report.Profit > s.Stats.BestDay {
		s.Stats.BestDay = report.Profit
	}
	if report.Profit < s.Stats.WorstDay {
		s.Stats.WorstDay = report.Profit
	}

	if outcome, reason := g.evaluateEnd(); outcome != OutcomeNone {
		g.endGame(ctx, outcome, reason)
	} else {
		g.startNextDay()
	}
	report.NetWorth = g.netWorth()
	report.Outcome = s.Outcome
	g.checkAchievements()

	g.log.Info("daily report",
		"day", report.Day,
		"season", s.Season,
		"weather", s.Weather,
		"cash", s.Cash,
		"debt", s.Debt,
		"inventory", s.Ledger.Total(),
		"net_worth", report.NetWorth,
		"profit", report.Profit,
		"lost", report.Mortality+report.Rot,
		"reputation", s.Reputation.Score,
		"outcome", s.Outcome,
	)
	return report, true
}

func (g *Game) reportReputation(c social.RepChange) {
	if !c.TierChanged() {
		return
	}
	if c.Promoted() {
		g.emit(CatReputation, "Word spreads: you are now a %s", c.To.Name)
		return
	}
	g.emit(CatReputation, "Your name has slipped to %s", c.To.Name)
}

// evaluateEnd checks the end conditions in order: win, bankruptcy (hard
// floor, then the grace period), season length.
func (g *Game) evaluateEnd() (Outcome, string) {
	s := g.s
	if outcome, reason := g.suddenEnd(); outcome != OutcomeNone {
		return outcome, reason
	}

	nw := g.netWorth()
	switch {
	case nw < 0:
		s.DaysInTrouble++
		if s.DaysInTrouble >= g.bal.DaysUntilBankruptcy {
			return OutcomeBankrupt, "too many days underwater"
		}
		g.emit(CatFinance, "Net worth is %s: %d of %d days before the bank calls it",
			money(nw), s.DaysInTrouble, g.bal.DaysUntilBankruptcy)
	default:
		if s.DaysInTrouble > 0 {
			s.Stats.RecoveredDebt = true
			g.emit(CatFinance, "Back in the black")
		}
		s.DaysInTrouble = 0
	}

	if g.bal.SeasonLength > 0 && s.Day >= g.bal.SeasonLength {
		return OutcomeSeasonOver, "the season has ended"
	}
	return OutcomeNone, ""
}

// suddenEnd checks the conditions that end a game on the spot: the win
// target, then the hard bankruptcy floor.
func (g *Game) suddenEnd() (Outcome, string) {
	if g.s.Cash >= g.bal.WinCash {
		return OutcomeWon, "you reached " + money(g.bal.WinCash)
	}
	if g.netWorth() < g.bal.BankruptcyFloor {
		return OutcomeBankrupt, "net worth fell below " + money(g.bal.BankruptcyFloor)
	}
	return OutcomeNone, ""
}

// checkTradingEnd ends the game mid-day when a trade crossed the win target
// or the hard floor. The grace period only counts down at day end.
func (g *Game) checkTradingEnd() {
	if g.s.Over() {
		return
	}
	if outcome, reason := g.suddenEnd(); outcome != OutcomeNone {
		g.endGame(context.Background(), outcome, reason)
	}
}

// GoalFor returns the best goal tier a cash total reaches, or nil.
func GoalFor(cash float64) *config.GoalTier {
	var best *config.GoalTier
	for i := range config.GoalTiers {
		if cash >= config.GoalTiers[i].Cash {
			t := config.GoalTiers[i]
			best = &t
		}
	}
	return best
}

// endGame freezes the game, scores it and banks the legacy.
func (g *Game) endGame(ctx context.Context, outcome Outcome, reason string) {
	s := g.s
	s.Outcome = outcome
	s.Boats = nil
	s.Buyers = nil
	s.ContractOffers = nil
	s.Summary = &Summary{
		Outcome:  outcome,
		Day:      s.Day,
		Cash:     s.Cash,
		NetWorth: g.netWorth(),
		Goal:     GoalFor(s.Cash),
		Reason:   reason,
	}
	if s.Summary.Goal != nil {
		g.emit(CatGame, "Game over on day %d: %s. %s, %d stars", s.Day, reason, s.Summary.Goal.Title, s.Summary.Goal.Stars)
	} else {
		g.emit(CatGame, "Game over on day %d: %s", s.Day, reason)
	}

	g.legacy.GamesCompleted++
	g.legacy.LifetimeEarnings = economy.RoundCents(g.legacy.LifetimeEarnings + s.Stats.TotalEarned)
	g.legacy.BestCash = max(g.legacy.BestCash, s.Cash)
	if err := g.store.SaveLegacy(ctx, g.legacy); err != nil {
		g.log.Warn("save legacy", "error", err)
	}
	g.log.Info("game over",
		"outcome", outcome,
		"day", s.Day,
		"cash", s.Cash,
		"net_worth", s.Summary.NetWorth,
		"reason", reason,
	)
}

// startNextDay rolls the calendar forward and sets up the new day.
func (g *Game) startNextDay() {
	s := g.s
	s.Day++
	prev := s.Season
	s.Season = config.SeasonForDay(s.Day)
	s.Weather = s.TomorrowWeather
	s.TomorrowWeather = g.sky.Next(g.src, config.SeasonForDay(s.Day+1), s.Weather, s.Day)
	s.MarketTrend = weather.RollTrend(g.src, g.bal.Weather)

	s.DailySpent, s.DailyEarned = 0, 0
	s.DailyBought, s.DailySold = 0, 0
	s.TravelsToday = 0
	s.VisitedToday = []config.TownID{s.Location}

	if s.Season != prev {
		g.emit(CatMarket, "%s has arrived", s.Season)
	}
	g.setupDay()
}

// setupDay fills the dock and the market for the current day.
func (g *Game) setupDay() {
	s := g.s
	g.startStoryDay()
	s.Boats = g.rivalsBid(g.generateBoats())
	s.Buyers = g.generateBuyers()
	s.ContractOffers = g.generateContractOffers()
	if s.Day > 1 {
		g.rollIncidents()
		if g.bal.Events.Enabled {
			g.rollStory()
		}
	}
	s.DayStartInventory = s.Ledger.Total()

	trend := map[int]string{-1: "falling", 0: "steady", 1: "rising"}[s.MarketTrend]
	g.emit(CatMarket, "Day %d, %s: %s, prices %s. %d boats, %d buyers",
		s.Day, s.Season, weather.Describe(s.Weather), trend, len(s.Boats), len(s.Buyers))
	g.log.Debug("day setup",
		slog.Int("day", s.Day),
		slog.String("weather", string(s.Weather)),
		slog.Int("boats", len(s.Boats)),
		slog.Int("buyers", len(s.Buyers)),
	)
}

// Forecast returns today's and tomorrow's weather.
func (g *Game) Forecast() (today, tomorrow config.Weather) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.s.Weather, g.s.TomorrowWeather
}
