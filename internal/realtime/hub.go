// Package realtime fans out "collection changed" notifications to snapshot subscribers.
package realtime

import (
	"context"
	"sync"
)

// Topic names a per-account collection
type Topic string

const (
	TopicVaccines    Topic = "vaccines"
	TopicSuggestions Topic = "suggestions"
	TopicDiet        Topic = "diet"
)

// Event tells subscribers that a collection of an account changed
type Event struct {
	AccountID string `json:"account_id"`
	Topic     Topic  `json:"topic"`
}

// Publisher announces collection changes
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type subKey struct {
	accountID string
	topic     Topic
}

// Hub is an in-process registry of change callbacks. Callbacks run on the
// publisher's goroutine and must not block.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[subKey]map[uint64]func(Event)
}

// NewHub returns an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[subKey]map[uint64]func(Event))}
}

// Subscribe registers fn for changes of topic under accountID. The returned
// function removes the registration and is safe to call more than once.
func (h *Hub) Subscribe(accountID string, topic Topic, fn func(Event)) func() {
	key := subKey{accountID: accountID, topic: topic}

	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]func(Event))
	}
	h.subs[key][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[key], id)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
		})
	}
}

// Publish invokes every callback registered for the event's account and topic
func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.RLock()
	callbacks := make([]func(Event), 0, len(h.subs[subKey{ev.AccountID, ev.Topic}]))
	for _, fn := range h.subs[subKey{ev.AccountID, ev.Topic}] {
		callbacks = append(callbacks, fn)
	}
	h.mu.RUnlock()

	for _, fn := range callbacks {
		fn(ev)
	}
}

// Subscribers returns the number of callbacks registered for accountID and topic
func (h *Hub) Subscribers(accountID string, topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[subKey{accountID, topic}])
}
