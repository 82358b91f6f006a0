// Package notify delivers toggle events and status snapshots to live
// subscribers and to an optional message broker.
package notify

import (
	"sync"
	"time"

	"mpihole/internal/models"
)

// Message kinds sent to subscribers.
const (
	KindStatus = "status"
	KindToggle = "toggle"
)

// Message is what a /ws client receives.
type Message struct {
	Kind   string                `json:"kind"`
	SentAt time.Time             `json:"sent_at"`
	Status []models.ServerStatus `json:"status,omitempty"`
	Event  *models.ToggleEvent   `json:"event,omitempty"`
}

const subscriberBuffer = 16

// Hub fans messages out to subscribers. Slow subscribers miss messages
// instead of blocking the sender.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Message]struct{}
	last   *Message
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Message]struct{})}
}

// Subscribe registers a listener. The last status snapshot, if any, is
// delivered first. cancel must be called once the listener is done.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	if h.last != nil {
		ch <- *h.last
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) BroadcastStatus(status []models.ServerStatus) {
	m := Message{Kind: KindStatus, SentAt: time.Now().UTC(), Status: status}

	h.mu.Lock()
	h.last = &m
	h.mu.Unlock()

	h.send(m)
}

func (h *Hub) BroadcastEvent(e models.ToggleEvent) {
	h.send(Message{Kind: KindToggle, SentAt: time.Now().UTC(), Event: &e})
}

func (h *Hub) send(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
