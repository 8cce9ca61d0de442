// Package pipeline orchestrates one ingestion tick: fetch the feed
// snapshot, filter it to the configured region, persist each new event
// exactly once, and fan out alerts for significant ones.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/observability"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

// NotificationFloor is the minimum magnitude at which a newly persisted
// event triggers subscriber notification.
const NotificationFloor = 4.0

// FeedFetcher retrieves the current snapshot of candidate events.
type FeedFetcher interface {
	FetchSnapshot(ctx context.Context) ([]domain.Candidate, error)
}

// Alerter dispatches the notification batch for a newly persisted event.
// Implementations must not return errors: notifications are best-effort
// and never affect persistence.
type Alerter interface {
	Notify(ctx context.Context, event domain.SeismicEvent)
}

// Summary reports the outcome of one tick.
type Summary struct {
	Fetched  int `json:"fetched"`
	InRegion int `json:"in_region"`
	New      int `json:"new"`
	Known    int `json:"known"`
}

// Pipeline runs the fetch-filter-dedup-persist-notify sequence. Candidates
// are processed sequentially in feed order so the check-then-insert dedup
// sequence has no intra-tick races; the scheduler guarantees ticks never
// overlap.
type Pipeline struct {
	fetcher   FeedFetcher
	events    store.EventStore
	alerter   Alerter
	region    domain.BoundingBox
	refPoints []domain.ReferencePoint
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline over the given collaborators.
func New(fetcher FeedFetcher, events store.EventStore, alerter Alerter, region domain.BoundingBox, refPoints []domain.ReferencePoint, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		events:    events,
		alerter:   alerter,
		region:    region,
		refPoints: refPoints,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one tick has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no ingestion tick has completed yet")
	}
	return nil
}

// RunTick executes one full ingestion tick.
//
// A fetch error aborts the tick with no state change. A persist error
// aborts the remainder of the tick: candidates persisted earlier in the
// same tick stay committed, and unprocessed ones are retried on the next
// tick because they are still absent from the store. The returned Summary
// reflects whatever was processed before an abort.
func (p *Pipeline) RunTick(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	defer func() {
		p.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}()

	candidates, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		p.metrics.FetchErrors.Inc()
		p.logger.Error("feed fetch failed", "stage", "fetch", "error", err)
		return Summary{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	p.metrics.CandidatesFetched.Add(float64(len(candidates)))

	inRegion := domain.FilterRegion(p.region, candidates)
	p.metrics.CandidatesInRegion.Add(float64(len(inRegion)))

	summary := Summary{Fetched: len(candidates), InRegion: len(inRegion)}

	for _, c := range inRegion {
		known, err := p.processCandidate(ctx, c)
		if err != nil {
			return summary, err
		}
		if known {
			summary.Known++
		} else {
			summary.New++
		}
	}

	p.ready.Store(true)
	p.logger.Info("tick complete",
		"fetched", summary.Fetched,
		"in_region", summary.InRegion,
		"new", summary.New,
		"known", summary.Known,
	)
	return summary, nil
}

// processCandidate handles the dedup-enrich-persist-notify sequence for one
// candidate. It reports whether the candidate was already known; any error
// is fatal for the remainder of the tick.
func (p *Pipeline) processCandidate(ctx context.Context, c domain.Candidate) (known bool, err error) {
	_, err = p.events.FindByExternalID(ctx, c.ExternalID)
	switch {
	case err == nil:
		p.metrics.EventsKnown.Inc()
		return true, nil
	case !errors.Is(err, store.ErrNotFound):
		p.metrics.PersistErrors.Inc()
		p.logger.Error("dedup lookup failed",
			"stage", "lookup", "external_id", c.ExternalID, "magnitude", c.Magnitude, "error", err)
		return false, fmt.Errorf("lookup %s: %w", c.ExternalID, err)
	}

	event := domain.NewSeismicEvent(c, p.refPoints)

	if err := p.events.Insert(ctx, &event); err != nil {
		// A concurrent writer beat us to this id; the uniqueness backstop
		// caught it, so the dedup invariant holds and no alert is sent.
		if errors.Is(err, store.ErrDuplicate) {
			p.metrics.EventsKnown.Inc()
			return true, nil
		}
		p.metrics.PersistErrors.Inc()
		p.logger.Error("persist failed, aborting tick",
			"stage", "persist", "external_id", c.ExternalID, "magnitude", c.Magnitude, "error", err)
		return false, fmt.Errorf("persist %s: %w", c.ExternalID, err)
	}

	p.metrics.EventsPersisted.Inc()
	p.logger.Info("new event persisted",
		"external_id", event.ExternalID,
		"magnitude", event.Magnitude,
		"nearest_reference", event.NearestReference,
		"distance_km", event.ReferenceDistance,
	)

	// Awaited before the next candidate so ordering is preserved; the
	// alerter isolates its own failures.
	if event.Magnitude >= NotificationFloor {
		p.alerter.Notify(ctx, event)
	}

	return false, nil
}
