package api

import (
	"sync"

	"github.com/talgya/lobster-tycoon/internal/engine"
)

const subscriberBuffer = 64

// Hub fans game events out to stream subscribers. Publish never blocks: a
// subscriber that falls a full buffer behind misses events.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan engine.Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan engine.Event)}
}

// Publish is shaped to be engine.Options.OnEvent.
func (h *Hub) Publish(e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *Hub) Subscribe() (int, <-chan engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan engine.Event, subscriberBuffer)
	h.subs[h.next] = ch
	return h.next, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

// Subscribers counts open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
