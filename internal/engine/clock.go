package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock drives the boat countdowns in real time.
type Clock struct {
	Interval time.Duration // wall time between ticks (default 1 second)
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused

	// OnExpire receives the boats that ran out on a tick. It runs on the
	// clock goroutine with the game unlocked.
	OnExpire func(expired []Boat)

	game *Game
	mu   sync.Mutex
	stop chan struct{}
}

// NewClock creates a clock for g at real-time speed.
func NewClock(g *Game) *Clock {
	return &Clock{
		Interval: time.Second,
		Speed:    1.0,
		game:     g,
	}
}

// Run ticks the game until Stop is called, ctx is done or the game ends.
// Elapsed time is measured against the day the tick started on, so a tick
// that races a day change is dropped.
func (c *Clock) Run(ctx context.Context) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.stop = nil
		c.mu.Unlock()
	}()

	slog.Info("clock started", "day", c.game.Day(), "speed", c.CurrentSpeed())
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	day := c.game.Day()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("clock stopped", "reason", ctx.Err())
			return
		case <-stop:
			slog.Info("clock stopped", "day", c.game.Day())
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds() * c.CurrentSpeed()
			last = now
			if over, _ := c.game.Over(); over {
				slog.Info("clock stopped", "reason", "game over")
				return
			}
			if elapsed > 0 {
				if expired := c.game.TickAt(day, elapsed); len(expired) > 0 && c.OnExpire != nil {
					c.OnExpire(expired)
				}
			}
			day = c.game.Day()
		}
	}
}

// SetSpeed changes the multiplier, also while running.
func (c *Clock) SetSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Speed = v
}

func (c *Clock) CurrentSpeed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Speed
}

// Running reports whether Run is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Stop halts a running clock.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
