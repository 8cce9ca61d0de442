package store

import (
	"context"
	"time"

	"github.com/dhakaquake/quake-monitor/internal/domain"
)

// Interface is implemented by the storage backends.
type Interface interface {
	Events() EventStore
	Subscribers() SubscriberStore
}

// EventStore manages the append-only SeismicEvent records. Events are never
// updated or deleted; ExternalID is the sole deduplication key.
type EventStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.SeismicEvent, error)
	Insert(ctx context.Context, event *domain.SeismicEvent) error
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context) (*domain.SeismicEvent, error)
	ListRecent(ctx context.Context, limit int) ([]domain.SeismicEvent, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.SeismicEvent, error)
}

// SubscriberStore manages alert subscribers. Emails are stored normalized
// (lowercased, trimmed) and unique.
type SubscriberStore interface {
	// ListActive returns active subscribers whose threshold is at most
	// maxThreshold, i.e. those matched by an event of that magnitude.
	ListActive(ctx context.Context, maxThreshold float64) ([]domain.Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	Upsert(ctx context.Context, sub *domain.Subscriber) error
	Deactivate(ctx context.Context, email string) error
	CountActive(ctx context.Context) (int64, error)
}
