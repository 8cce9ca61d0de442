package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

func newSubscriberStore(db *sqlx.DB) *subscriberStore {
	return &subscriberStore{db: db}
}

type subscriberStore struct {
	db *sqlx.DB
}

type sqlDataSubscriber struct {
	ID                 uuid.UUID `db:"id"`
	Email              string    `db:"email"`
	MagnitudeThreshold float64   `db:"magnitude_threshold"`
	IsActive           bool      `db:"is_active"`
	SubscribedAt       time.Time `db:"subscribed_at"`
}

func (d *sqlDataSubscriber) Scan(m *domain.Subscriber) {
	d.ID = m.ID
	d.Email = m.Email
	d.MagnitudeThreshold = m.MagnitudeThreshold
	d.IsActive = m.IsActive
	d.SubscribedAt = m.SubscribedAt
}

func (d *sqlDataSubscriber) Model() domain.Subscriber {
	return domain.Subscriber{
		ID:                 d.ID,
		Email:              d.Email,
		MagnitudeThreshold: d.MagnitudeThreshold,
		IsActive:           d.IsActive,
		SubscribedAt:       d.SubscribedAt,
	}
}

func (s *subscriberStore) ListActive(ctx context.Context, maxThreshold float64) ([]domain.Subscriber, error) {
	rows := make([]sqlDataSubscriber, 0)
	query := "SELECT * FROM subscribers WHERE is_active AND magnitude_threshold <= $1"
	if err := s.db.SelectContext(ctx, &rows, query, maxThreshold); err != nil {
		return nil, errors.Wrap(err, "failed to list active subscribers")
	}

	models := make([]domain.Subscriber, 0, len(rows))
	for _, d := range rows {
		models = append(models, d.Model())
	}
	return models, nil
}

func (s *subscriberStore) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var d sqlDataSubscriber
	query := "SELECT * FROM subscribers WHERE email = $1"
	if err := s.db.GetContext(ctx, &d, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find subscriber by email")
	}

	m := d.Model()
	return &m, nil
}

func (s *subscriberStore) Upsert(ctx context.Context, sub *domain.Subscriber) error {
	var d sqlDataSubscriber
	d.Scan(sub)

	query := `INSERT INTO subscribers (id, email, magnitude_threshold, is_active, subscribed_at)
		VALUES (:id, :email, :magnitude_threshold, :is_active, :subscribed_at)
		ON CONFLICT (email) DO UPDATE
		SET magnitude_threshold = EXCLUDED.magnitude_threshold,
		    is_active = EXCLUDED.is_active`

	if _, err := s.db.NamedExecContext(ctx, query, d); err != nil {
		return errors.Wrap(err, "failed to upsert subscriber")
	}
	return nil
}

func (s *subscriberStore) Deactivate(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE subscribers SET is_active = FALSE WHERE email = $1", email)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate subscriber")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read deactivate result")
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *subscriberStore) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subscribers WHERE is_active"); err != nil {
		return 0, errors.Wrap(err, "failed to count active subscribers")
	}
	return count, nil
}
