package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockExpiresBoats(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	stageBoat(g, "b1", 40, 4)
	g.s.Boats[0].TimeLeft = 1

	expired := make(chan []Boat, 1)
	c := NewClock(g)
	c.Interval = 5 * time.Millisecond
	c.Speed = 1000
	c.OnExpire = func(b []Boat) {
		select {
		case expired <- b:
		default:
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case b := <-expired:
		require.Len(t, b, 1)
		assert.Equal(t, "b1", b[0].ID)
	case <-ctx.Done():
		t.Fatal("boat never expired")
	}

	c.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock did not stop")
	}
	assert.Empty(t, g.Boats())
}

func TestClockStopsWithContext(t *testing.T) {
	g := newTestGame(t)
	c := NewClock(g)
	c.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock ignored cancellation")
	}
}

func TestPausedClockLeavesBoats(t *testing.T) {
	g := newTestGame(t)
	clearDay(g, 5000)
	stageBoat(g, "b1", 40, 4)

	c := NewClock(g)
	c.Interval = time.Millisecond
	c.Speed = 0

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	require.Len(t, g.Boats(), 1)
	assert.Equal(t, 60.0, g.Boats()[0].TimeLeft)
}
