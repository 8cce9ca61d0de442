// Package scheduler drives the ingestion pipeline on a fixed period.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dhakaquake/quake-monitor/internal/observability"
	"github.com/dhakaquake/quake-monitor/internal/pipeline"
)

// TickRunner executes one ingestion tick.
type TickRunner interface {
	RunTick(ctx context.Context) (pipeline.Summary, error)
}

// Scheduler fires the pipeline once at startup and then on a fixed
// interval. Ticks never overlap: the in-flight gate is shared between the
// periodic loop and manual triggers, so a due tick that finds the gate held
// is skipped rather than queued. Overlapping ticks would race the
// check-then-insert dedup sequence.
type Scheduler struct {
	runner   TickRunner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	inFlight atomic.Bool
}

// New creates a Scheduler. Pass clockwork.NewRealClock() in production; tests
// inject a fake clock to step through ticks deterministically.
func New(runner TickRunner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes the immediate startup tick and then loops until the context
// is cancelled. Tick errors are logged and absorbed: the period continues
// regardless of the previous tick's outcome.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.tick(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

// TryTick runs one tick if none is in flight, reporting whether it ran.
// This is the manual-trigger entry point; it shares the non-overlap gate
// with the periodic loop.
func (s *Scheduler) TryTick(ctx context.Context) (pipeline.Summary, bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.TicksSkipped.Inc()
		return pipeline.Summary{}, false, nil
	}
	defer s.inFlight.Store(false)

	s.metrics.TicksRun.Inc()
	summary, err := s.runner.RunTick(ctx)
	return summary, true, err
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, ran, err := s.TryTick(ctx)
	if !ran {
		s.logger.Warn("tick skipped, previous tick still running")
		return
	}
	if err != nil {
		s.logger.Error("tick failed", "error", err, "new", summary.New, "known", summary.Known)
	}
}
