package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/economy"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGame starts a strict game with random incidents off so tests can
// reason about cash exactly.
func newTestGame(t *testing.T, mutate ...func(*config.Balance)) *Game {
	t.Helper()
	bal := config.DefaultBalance()
	bal.Events.Enabled = false
	for _, m := range mutate {
		m(&bal)
	}
	g, err := New(context.Background(), Options{
		Seed:    42,
		Balance: &bal,
		Strict:  true,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	return g
}

// clearDay empties the market so a test can stage its own offers.
func clearDay(g *Game, cash float64) {
	g.s.Cash = cash
	g.s.Boats = nil
	g.s.Buyers = nil
	g.s.ContractOffers = nil
	g.s.Ledger = economy.NewLedger()
}

func stageBoat(g *Game, id string, amount int, price float64) {
	g.s.Boats = append(g.s.Boats, Boat{
		ID:          id,
		Name:        "Test Boat",
		Type:        "lobster",
		Captain:     "Captain Test",
		CatchAmount: amount,
		PricePerLb:  price,
		TimeLeft:    60,
		Day:         g.s.Day,
	})
}

func TestNewGameDayOne(t *testing.T) {
	g := newTestGame(t)
	s := g.Snapshot()

	assert.Equal(t, 1, s.Day)
	assert.Equal(t, config.SeasonForDay(1), s.Season)
	assert.Equal(t, 5000.0, s.Cash)
	assert.Equal(t, config.StartingTown, s.Location)
	assert.Equal(t, 0, s.Ledger.Total())
	assert.Len(t, s.Rivals, len(config.Rivals))
	assert.NotEmpty(t, s.Buyers)
	assert.False(t, s.Over())
	for _, b := range s.Boats {
		assert.Equal(t, 1, b.Day)
		assert.Positive(t, b.CatchAmount)
		assert.GreaterOrEqual(t, b.PricePerLb, 0.01)
	}
}

func TestNewRejectsBadBalance(t *testing.T) {
	bal := config.DefaultBalance()
	bal.Tank.BaseCapacity = 0
	_, err := New(context.Background(), Options{Balance: &bal, Logger: quietLogger()})
	assert.Error(t, err)
}

func TestSameSeedSameGame(t *testing.T) {
	a := newTestGame(t)
	b := newTestGame(t)
	ctx := context.Background()
	for range 5 {
		a.AdvanceDay(ctx)
		b.AdvanceDay(ctx)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	assert.Equal(t, sa.Cash, sb.Cash)
	assert.Equal(t, sa.Weather, sb.Weather)
	assert.Equal(t, sa.Boats, sb.Boats)
	assert.Equal(t, sa.Buyers, sb.Buyers)
}

func TestSnapshotRestoreResumesIdentically(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t)
	for range 3 {
		g.AdvanceDay(ctx)
	}
	snap := g.Snapshot()

	r, err := Restore(ctx, snap, Options{Balance: ptr(g.Balance()), Strict: true, Logger: quietLogger()})
	require.NoError(t, err)

	for range 4 {
		ga, _ := g.AdvanceDay(ctx)
		ra, _ := r.AdvanceDay(ctx)
		assert.Equal(t, ga, ra)
	}
	sg, sr := g.Snapshot(), r.Snapshot()
	assert.Equal(t, sg.Day, sr.Day)
	assert.Equal(t, sg.Cash, sr.Cash)
	assert.Equal(t, sg.Boats, sr.Boats)
	assert.Equal(t, sg.Buyers, sr.Buyers)
	assert.Equal(t, sg.TomorrowWeather, sr.TomorrowWeather)
}

func TestSnapshotIsDetached(t *testing.T) {
	g := newTestGame(t)
	snap := g.Snapshot()
	snap.Cash = 1
	snap.Ledger.AddLot("x", config.GradeRun, 10, 100, 10, 1)
	assert.Equal(t, 5000.0, g.Snapshot().Cash)
	assert.Equal(t, 0, g.TotalInventory())
}

func TestRestoreRejectsInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	_, err := Restore(ctx, nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = Restore(ctx, &State{Day: 0}, Options{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	g := newTestGame(t)
	snap := g.Snapshot()
	snap.Ledger.Inventory[config.GradeRun] = 99
	_, err = Restore(ctx, snap, Options{Logger: quietLogger()})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestEventLogIsBounded(t *testing.T) {
	g := newTestGame(t)
	for i := range maxEvents + 50 {
		g.emit(CatMarket, "event %d", i)
	}
	events, next := g.Events(0)
	assert.Len(t, events, maxEvents)
	assert.Equal(t, g.s.EventCount, next)
	assert.Equal(t, "event 1049", events[len(events)-1].Message)

	g.emit(CatMarket, "one more")
	events, next2 := g.Events(next)
	require.Len(t, events, 1)
	assert.Equal(t, "one more", events[0].Message)
	assert.Equal(t, next+1, next2)

	events, _ = g.Events(next2)
	assert.Empty(t, events)
}

func TestOnEventReceivesEvents(t *testing.T) {
	var got []Event
	bal := config.DefaultBalance()
	bal.Events.Enabled = false
	_, err := New(context.Background(), Options{
		Seed:    7,
		Balance: &bal,
		Logger:  quietLogger(),
		OnEvent: func(e Event) { got = append(got, e) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, CatMarket, got[len(got)-1].Category)
}

func ptr[T any](v T) *T { return &v }
