package audit

import (
	"context"
	"slices"
	"sync"

	"warden/internal/identity/store/memtx"
	id "warden/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.UserID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.UserID][]Event)}
}

// Append joins an in-memory transaction carried by ctx: a rollback removes the
// event again.
func (s *InMemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	memtx.Record(ctx, func() { s.remove(event) })
	return nil
}

func (s *InMemoryStore) remove(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events[event.UserID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == event {
			s.events[event.UserID] = slices.Delete(slices.Clone(events), i, i+1)
			return
		}
	}
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[userID]), nil
}
