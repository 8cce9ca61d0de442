package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

func newEventStore(db *sqlx.DB) *eventStore {
	return &eventStore{db: db}
}

type eventStore struct {
	db *sqlx.DB
}

type sqlDataEvent struct {
	ExternalID          string    `db:"external_id"`
	Magnitude           float64   `db:"magnitude"`
	Location            string    `db:"location"`
	Latitude            float64   `db:"latitude"`
	Longitude           float64   `db:"longitude"`
	Depth               float64   `db:"depth"`
	OccurredAt          time.Time `db:"occurred_at"`
	NearestReference    string    `db:"nearest_reference"`
	ReferenceDistanceKm int       `db:"reference_distance_km"`
	CreatedAt           time.Time `db:"created_at"`
}

func (d *sqlDataEvent) Scan(m *domain.SeismicEvent) {
	d.ExternalID = m.ExternalID
	d.Magnitude = m.Magnitude
	d.Location = m.Location
	d.Latitude = m.Latitude
	d.Longitude = m.Longitude
	d.Depth = m.Depth
	d.OccurredAt = m.OccurredAt
	d.NearestReference = m.NearestReference
	d.ReferenceDistanceKm = m.ReferenceDistance
	d.CreatedAt = m.CreatedAt
}

func (d *sqlDataEvent) Model() domain.SeismicEvent {
	return domain.SeismicEvent{
		ExternalID:        d.ExternalID,
		Magnitude:         d.Magnitude,
		Location:          d.Location,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		Depth:             d.Depth,
		OccurredAt:        d.OccurredAt,
		NearestReference:  d.NearestReference,
		ReferenceDistance: d.ReferenceDistanceKm,
		CreatedAt:         d.CreatedAt,
	}
}

func (s *eventStore) FindByExternalID(ctx context.Context, externalID string) (*domain.SeismicEvent, error) {
	var d sqlDataEvent
	query := "SELECT * FROM seismic_events WHERE external_id = $1"
	if err := s.db.GetContext(ctx, &d, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find event by external id")
	}

	m := d.Model()
	return &m, nil
}

func (s *eventStore) Insert(ctx context.Context, event *domain.SeismicEvent) error {
	var d sqlDataEvent
	d.Scan(event)

	// ON CONFLICT DO NOTHING backstops the pipeline's check-then-insert
	// sequence against a concurrent writer; zero affected rows means the
	// external id was already present.
	query := `INSERT INTO seismic_events
		(external_id, magnitude, location, latitude, longitude, depth,
		 occurred_at, nearest_reference, reference_distance_km, created_at)
		VALUES (:external_id, :magnitude, :location, :latitude, :longitude, :depth,
		 :occurred_at, :nearest_reference, :reference_distance_km, :created_at)
		ON CONFLICT (external_id) DO NOTHING`

	res, err := s.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return errors.Wrap(err, "failed to insert event")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read insert result")
	}
	if affected == 0 {
		return store.ErrDuplicate
	}

	return nil
}

func (s *eventStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM seismic_events"); err != nil {
		return 0, errors.Wrap(err, "failed to count events")
	}
	return count, nil
}

func (s *eventStore) Latest(ctx context.Context) (*domain.SeismicEvent, error) {
	var d sqlDataEvent
	query := "SELECT * FROM seismic_events ORDER BY occurred_at DESC LIMIT 1"
	if err := s.db.GetContext(ctx, &d, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to fetch latest event")
	}

	m := d.Model()
	return &m, nil
}

func (s *eventStore) ListRecent(ctx context.Context, limit int) ([]domain.SeismicEvent, error) {
	rows := make([]sqlDataEvent, 0, limit)
	query := "SELECT * FROM seismic_events ORDER BY occurred_at DESC LIMIT $1"
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list recent events")
	}
	return toModels(rows), nil
}

func (s *eventStore) ListSince(ctx context.Context, since time.Time) ([]domain.SeismicEvent, error) {
	rows := make([]sqlDataEvent, 0)
	query := "SELECT * FROM seismic_events WHERE occurred_at >= $1 ORDER BY occurred_at DESC"
	if err := s.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, errors.Wrap(err, "failed to list events since")
	}
	return toModels(rows), nil
}

func toModels(rows []sqlDataEvent) []domain.SeismicEvent {
	models := make([]domain.SeismicEvent, 0, len(rows))
	for _, d := range rows {
		models = append(models, d.Model())
	}
	return models
}
