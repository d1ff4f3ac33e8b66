package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
)

func TestAdvanceDayRollsCalendar(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	_, tomorrow := g.Forecast()

	report, ok := g.AdvanceDay(context.Background())
	require.True(t, ok)

	assert.Equal(t, 1, report.Day)
	assert.Equal(t, 2, g.Day())
	assert.Equal(t, 50.0, report.OperatingCost)
	assert.Equal(t, -50.0, report.Profit)
	assert.False(t, report.Weekly)

	s := g.Snapshot()
	assert.Equal(t, tomorrow, s.Weather)
	assert.Equal(t, 4950.0, s.Cash)
	assert.Zero(t, s.DailySpent)
	assert.Zero(t, s.TravelsToday)
	assert.Equal(t, []config.TownID{s.Location}, s.VisitedToday)
	for _, b := range s.Boats {
		assert.Equal(t, 2, b.Day)
	}
}

func TestAdvanceDayDecaysStock(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Ledger.AddLot("a", config.GradeRun, 100, 100, 10, 1)

	report, ok := g.AdvanceDay(context.Background())
	require.True(t, ok)

	s := g.Snapshot()
	assert.Positive(t, report.Mortality)
	assert.Equal(t, 100-report.Mortality-report.Rot, s.Ledger.Total())
	assert.Equal(t, report.Mortality, s.Stats.MortalityLoss)
	assert.Less(t, s.Ledger.AverageFreshness(), 100.0)
	// base cost plus five cents a pound on the surviving stock
	assert.Equal(t, 50+float64(int(0.05*float64(s.Ledger.Total()))), report.OperatingCost)
	require.NoError(t, s.Ledger.Verify())
}

func TestBankruptcyGracePeriod(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, -100)
	ctx := context.Background()

	for day := 1; day <= 2; day++ {
		report, ok := g.AdvanceDay(ctx)
		require.True(t, ok)
		assert.Equal(t, OutcomeNone, report.Outcome, "day %d", day)
		assert.Equal(t, day, g.Snapshot().DaysInTrouble)
	}

	report, ok := g.AdvanceDay(ctx)
	require.True(t, ok)
	assert.Equal(t, OutcomeBankrupt, report.Outcome)

	over, outcome := g.Over()
	assert.True(t, over)
	assert.Equal(t, OutcomeBankrupt, outcome)
	assert.Equal(t, 3, g.Day(), "the calendar stops on the losing day")
}

func TestRecoveryResetsGracePeriod(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, -100)
	ctx := context.Background()

	g.AdvanceDay(ctx)
	g.AdvanceDay(ctx)
	require.Equal(t, 2, g.Snapshot().DaysInTrouble)

	g.s.Cash = 1000
	report, ok := g.AdvanceDay(ctx)
	require.True(t, ok)
	assert.Equal(t, OutcomeNone, report.Outcome)

	s := g.Snapshot()
	assert.Zero(t, s.DaysInTrouble)
	assert.True(t, s.Stats.RecoveredDebt)
	assert.Contains(t, s.Achievements, "recovered")
}

func TestBankruptcyFloorIsImmediate(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, -6000)

	report, ok := g.AdvanceDay(context.Background())
	require.True(t, ok)
	assert.Equal(t, OutcomeBankrupt, report.Outcome)
	assert.Equal(t, 1, g.Day())
}

func TestWinEndsGame(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 100100)
	ctx := context.Background()

	report, ok := g.AdvanceDay(ctx)
	require.True(t, ok)
	assert.Equal(t, OutcomeWon, report.Outcome)

	s := g.Snapshot()
	require.NotNil(t, s.Summary)
	assert.Equal(t, OutcomeWon, s.Summary.Outcome)
	require.NotNil(t, s.Summary.Goal)
	assert.Empty(t, s.Boats)
	assert.Empty(t, s.Buyers)

	legacy, err := g.store.LoadLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, legacy.GamesCompleted)
	assert.Equal(t, 100050.0, legacy.BestCash)

	_, ok = g.AdvanceDay(ctx)
	assert.False(t, ok, "a finished game does not advance")
	assert.False(t, g.TakeLoan(100))
	ok, err = g.BuyEquipment(config.Scale)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWinBeatsBankruptcy(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 100100)
	g.s.Debt = 200000

	report, _ := g.AdvanceDay(context.Background())
	assert.Equal(t, OutcomeWon, report.Outcome)
}

func TestSeasonLengthEndsGame(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Day = g.Balance().SeasonLength

	report, ok := g.AdvanceDay(context.Background())
	require.True(t, ok)
	assert.Equal(t, OutcomeSeasonOver, report.Outcome)
}

func TestOpenEndedSeason(t *testing.T) {
	g := newTestGame(t, func(b *config.Balance) { b.SeasonLength = 0 })
	clearDay(g, 5000)
	g.s.Day = 200

	report, ok := g.AdvanceDay(context.Background())
	require.True(t, ok)
	assert.Equal(t, OutcomeNone, report.Outcome)
	assert.Equal(t, 201, g.Day())
}

func TestWeeklyInterestRoundsUpToTheDollar(t *testing.T) {
	tests := []struct {
		debt, interest float64
	}{
		{1000, 50},
		{1001, 51},
		{333.33, 17},
	}
	for _, tt := range tests {
		g := newTestGame(t)
		clearDay(g, 5000)
		g.s.Debt = tt.debt
		g.s.Day = DaysPerWeek

		report, ok := g.AdvanceDay(context.Background())
		require.True(t, ok)
		assert.True(t, report.Weekly)
		assert.Equal(t, tt.interest, report.Interest, "debt %v", tt.debt)
		assert.InDelta(t, tt.debt+tt.interest, g.Snapshot().Debt, 0.001)
	}
}

func TestNoInterestMidWeek(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	g.s.Debt = 1000
	g.s.Day = DaysPerWeek + 1

	report, _ := g.AdvanceDay(context.Background())
	assert.False(t, report.Weekly)
	assert.Equal(t, 1000.0, g.Snapshot().Debt)
}

func TestGoalFor(t *testing.T) {
	assert.Nil(t, GoalFor(-1))
	top := config.GoalTiers[len(config.GoalTiers)-1]
	got := GoalFor(top.Cash + 1)
	require.NotNil(t, got)
	assert.Equal(t, top.Title, got.Title)
}

func TestSeasonChangesWithCalendar(t *testing.T) {
	g := newTestGame(t, func(b *config.Balance) { b.SeasonLength = 0 })
	clearDay(g, 50000)
	ctx := context.Background()

	seen := map[config.Season]bool{g.Snapshot().Season: true}
	for range 130 {
		_, ok := g.AdvanceDay(ctx)
		require.True(t, ok)
		g.s.Cash = 50000
		seen[g.Snapshot().Season] = true
	}
	assert.Len(t, seen, len(config.Seasons))
}
