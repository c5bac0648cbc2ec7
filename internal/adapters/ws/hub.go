// Package ws delivers bus events to WebSocket clients. It implements the
// core.EventSink boundary: delivery is fire-and-forget, a subscriber whose
// buffer is full misses the event.
package ws

import (
	"sync"

	"github.com/canbridge/canbridge/internal/domain"
)

const subscriberBuf = 64

// Event is the JSON envelope pushed to clients.
type Event struct {
	Type  string             `json:"type"` // "frame" | "error"
	Frame *domain.FrameEvent `json:"frame,omitempty"`
	Error *domain.ErrorEvent `json:"error,omitempty"`
}

type subscriber struct {
	ch chan Event
}

// Hub fans events out to all connected clients.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a client. The returned unsubscribe func must be called
// when the client disconnects; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, subscriberBuf)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
		close(s.ch)
	}
	return s.ch, unsub
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) EmitFrame(fe domain.FrameEvent) {
	h.publish(Event{Type: "frame", Frame: &fe})
}

func (h *Hub) EmitError(ee domain.ErrorEvent) {
	h.publish(Event{Type: "error", Error: &ee})
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.ch <- e:
		default:
			// Slow consumer, drop for this subscriber only.
		}
	}
}
