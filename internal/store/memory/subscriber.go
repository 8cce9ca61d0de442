package memory

import (
	"context"
	"sync"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

type subscriberStore struct {
	mu          sync.RWMutex
	subscribers map[string]domain.Subscriber // keyed by normalized email
}

func newSubscriberStore() *subscriberStore {
	return &subscriberStore{
		subscribers: make(map[string]domain.Subscriber),
	}
}

func (s *subscriberStore) ListActive(_ context.Context, maxThreshold float64) ([]domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]domain.Subscriber, 0)
	for _, sub := range s.subscribers {
		if sub.IsActive && sub.MagnitudeThreshold <= maxThreshold {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (s *subscriberStore) FindByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.subscribers[email]; ok {
		return &sub, nil
	}
	return nil, store.ErrNotFound
}

func (s *subscriberStore) Upsert(_ context.Context, sub *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.subscribers[sub.Email]; ok {
		// Keep the original identity and subscription time.
		sub.ID = existing.ID
		sub.SubscribedAt = existing.SubscribedAt
	}
	s.subscribers[sub.Email] = *sub
	return nil
}

func (s *subscriberStore) Deactivate(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscribers[email]
	if !ok {
		return store.ErrNotFound
	}
	sub.IsActive = false
	s.subscribers[email] = sub
	return nil
}

func (s *subscriberStore) CountActive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, sub := range s.subscribers {
		if sub.IsActive {
			count++
		}
	}
	return count, nil
}
