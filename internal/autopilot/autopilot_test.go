package autopilot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
)

func newGame(t *testing.T, seed int64) *engine.Game {
	t.Helper()
	g, err := engine.New(context.Background(), engine.Options{
		Seed:   seed,
		Strict: true,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return g
}

func TestRunTrades(t *testing.T) {
	g := newGame(t, 1)
	r, err := Default().Run(context.Background(), g, 20)
	require.NoError(t, err)

	assert.Positive(t, r.Days)
	assert.LessOrEqual(t, r.Days, 20)
	assert.Positive(t, r.Bought)
	require.NoError(t, g.Snapshot().Ledger.Verify())
}

func TestRunIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Default().Run(ctx, newGame(t, 77), 15)
	require.NoError(t, err)
	b, err := Default().Run(ctx, newGame(t, 77), 15)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunStopsAtGameEnd(t *testing.T) {
	g := newGame(t, 5)
	r, err := Default().Run(context.Background(), g, 0)
	require.NoError(t, err)
	assert.NotEqual(t, engine.OutcomeNone, r.Outcome)
	assert.LessOrEqual(t, r.Days, config.DefaultBalance().SeasonLength)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := Default().Run(ctx, newGame(t, 2), 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.Days)
}

func TestBuyRespectsLimits(t *testing.T) {
	g := newGame(t, 3)
	st := Strategy{MaxBuyPrice: 0.001}
	require.NoError(t, st.buy(g))
	assert.Zero(t, g.TotalInventory())

	st = Strategy{MaxBuyPrice: 100, Reserve: 1e9}
	require.NoError(t, st.buy(g))
	assert.Zero(t, g.TotalInventory())
}
