// Package memory provides an in-memory storage backend used by tests and
// local development runs without a database.
package memory

import (
	"github.com/dhakaquake/quake-monitor/internal/store"
)

type memStore struct {
	events      *eventStore
	subscribers *subscriberStore
}

// NewStore creates a new in-memory storage Interface.
func NewStore() store.Interface {
	return &memStore{
		events:      newEventStore(),
		subscribers: newSubscriberStore(),
	}
}

func (s *memStore) Events() store.EventStore {
	return s.events
}

func (s *memStore) Subscribers() store.SubscriberStore {
	return s.subscribers
}
