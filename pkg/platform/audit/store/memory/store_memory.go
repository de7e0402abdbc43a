// Package memory keeps audit events in process. It backs deployments
// without Kafka and every test that asserts on emitted events.
package memory

import (
	"context"
	"sync"

	audit "secretsanta/pkg/platform/audit"
)

// InMemoryStore indexes events by activity. With a limit set, only the
// newest events per activity are retained.
type InMemoryStore struct {
	mu     sync.RWMutex
	limit  int
	events map[string][]audit.Event
}

type Option func(*InMemoryStore)

// WithLimit caps retained events per activity. Zero or less keeps everything.
func WithLimit(n int) Option {
	return func(s *InMemoryStore) { s.limit = n }
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{events: make(map[string][]audit.Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := append(s.events[event.ActivityID], event)
	if s.limit > 0 && len(evs) > s.limit {
		evs = append(evs[:0:0], evs[len(evs)-s.limit:]...)
	}
	s.events[event.ActivityID] = evs
	return nil
}

// ListByActivity returns a copy of the retained events, oldest first.
func (s *InMemoryStore) ListByActivity(_ context.Context, activityID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events[activityID]...), nil
}

// Len counts retained events across all activities.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, evs := range s.events {
		n += len(evs)
	}
	return n
}
