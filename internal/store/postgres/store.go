package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dhakaquake/quake-monitor/internal/store"
)

// store contains the PostgreSQL backed sub-stores.
type pgStore struct {
	events      *eventStore
	subscribers *subscriberStore
}

// NewStore creates a PostgreSQL backed storage Interface.
func NewStore(db *sqlx.DB) store.Interface {
	return &pgStore{
		events:      newEventStore(db),
		subscribers: newSubscriberStore(db),
	}
}

// Events returns the sub-store for seismic events.
func (s *pgStore) Events() store.EventStore {
	return s.events
}

// Subscribers returns the sub-store for alert subscribers.
func (s *pgStore) Subscribers() store.SubscriberStore {
	return s.subscribers
}

const schema = `
CREATE TABLE IF NOT EXISTS seismic_events (
	external_id            TEXT PRIMARY KEY,
	magnitude              DOUBLE PRECISION NOT NULL,
	location               TEXT NOT NULL,
	latitude               DOUBLE PRECISION NOT NULL,
	longitude              DOUBLE PRECISION NOT NULL,
	depth                  DOUBLE PRECISION NOT NULL,
	occurred_at            TIMESTAMPTZ NOT NULL,
	nearest_reference      TEXT NOT NULL,
	reference_distance_km  INTEGER NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS seismic_events_occurred_at_idx ON seismic_events (occurred_at DESC);

CREATE TABLE IF NOT EXISTS subscribers (
	id                   UUID PRIMARY KEY,
	email                TEXT NOT NULL UNIQUE,
	magnitude_threshold  DOUBLE PRECISION NOT NULL,
	is_active            BOOLEAN NOT NULL,
	subscribed_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS subscribers_active_threshold_idx ON subscribers (magnitude_threshold) WHERE is_active;
`

// Migrate creates the tables and indexes if they do not exist.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
