package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/lobster-tycoon/internal/engine"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients have separate buckets")
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(30 * time.Second)
	assert.False(t, rl.Allow("a"))
	assert.Equal(t, 31, rl.RetryAfter("a"))

	now = now.Add(31 * time.Second)
	assert.True(t, rl.Allow("a"))
	assert.Zero(t, rl.RetryAfter("unknown"))
}

func TestRateLimiterSweepsStaleClients(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	now = now.Add(5 * time.Minute)
	rl.Allow("c")

	assert.Len(t, rl.buckets, 1)
}

func TestClientAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientAddr(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientAddr(req))
}

func TestHub(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	for range subscriberBuffer + 10 {
		h.Publish(engine.Event{Day: 1, Category: engine.CatMarket, Message: "x"})
	}
	assert.Len(t, ch, subscriberBuffer, "a full subscriber drops instead of blocking")

	h.Unsubscribe(id)
	assert.Zero(t, h.Subscribers())
	for range ch {
	}
	_, open := <-ch
	assert.False(t, open)
}
