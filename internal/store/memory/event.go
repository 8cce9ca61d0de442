package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

type eventStore struct {
	mu     sync.RWMutex
	events map[string]domain.SeismicEvent
}

func newEventStore() *eventStore {
	return &eventStore{
		events: make(map[string]domain.SeismicEvent),
	}
}

func (s *eventStore) FindByExternalID(_ context.Context, externalID string) (*domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.events[externalID]; ok {
		return &m, nil
	}
	return nil, store.ErrNotFound
}

func (s *eventStore) Insert(_ context.Context, event *domain.SeismicEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ExternalID]; ok {
		return store.ErrDuplicate
	}
	s.events[event.ExternalID] = *event
	return nil
}

func (s *eventStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

func (s *eventStore) Latest(_ context.Context) (*domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedDesc()
	if len(all) == 0 {
		return nil, store.ErrNotFound
	}
	return &all[0], nil
}

func (s *eventStore) ListRecent(_ context.Context, limit int) ([]domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedDesc()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *eventStore) ListSince(_ context.Context, since time.Time) ([]domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]domain.SeismicEvent, 0)
	for _, m := range s.sortedDesc() {
		if !m.OccurredAt.Before(since) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// sortedDesc returns all events newest first. Callers must hold the lock.
func (s *eventStore) sortedDesc() []domain.SeismicEvent {
	all := make([]domain.SeismicEvent, 0, len(s.events))
	for _, m := range s.events {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].OccurredAt.After(all[j].OccurredAt)
	})
	return all
}
