package memory

import (
	"context"
	"sync"

	id "municipal/pkg/domain"
	audit "municipal/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CitizenID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CitizenID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CitizenID] = append(s.events[event.CitizenID], event)
	return nil
}

func (s *InMemoryStore) ListByCitizen(_ context.Context, citizenID id.CitizenID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[citizenID]...), nil
}

// ListAll returns every recorded event, grouped by citizen.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, citizenEvents := range s.events {
		all = append(all, citizenEvents...)
	}
	return all, nil
}
