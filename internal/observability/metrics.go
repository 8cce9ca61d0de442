package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and its collaborators.
type Metrics struct {
	TicksRun     prometheus.Counter
	TicksSkipped prometheus.Counter
	TickDuration prometheus.Histogram

	FetchErrors        prometheus.Counter
	CandidatesFetched  prometheus.Counter
	CandidatesInRegion prometheus.Counter
	ValidationSkips    prometheus.Counter

	EventsPersisted prometheus.Counter
	EventsKnown     prometheus.Counter
	PersistErrors   prometheus.Counter

	NotificationBatches prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.TicksRun,
		m.TicksSkipped,
		m.TickDuration,
		m.FetchErrors,
		m.CandidatesFetched,
		m.CandidatesInRegion,
		m.ValidationSkips,
		m.EventsPersisted,
		m.EventsKnown,
		m.PersistErrors,
		m.NotificationBatches,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering collectors, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TicksRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "ticks_run_total",
			Help:      "Total ingestion ticks executed.",
		}),
		TicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "ticks_skipped_total",
			Help:      "Scheduled ticks suppressed because a tick was still running.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_monitor",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a complete fetch-filter-persist-notify tick.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "fetch_errors_total",
			Help:      "Feed snapshot fetches that failed or timed out.",
		}),
		CandidatesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "candidates_fetched_total",
			Help:      "Valid events returned by the feed, worldwide.",
		}),
		CandidatesInRegion: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "candidates_in_region_total",
			Help:      "Events inside the configured bounding box.",
		}),
		ValidationSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "validation_skips_total",
			Help:      "Feed entries dropped for missing required fields.",
		}),
		EventsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "events_persisted_total",
			Help:      "Newly persisted seismic events.",
		}),
		EventsKnown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "events_known_total",
			Help:      "Candidates skipped because their external id was already stored.",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "persist_errors_total",
			Help:      "Store insert failures (each aborts the remainder of its tick).",
		}),
		NotificationBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "notification_batches_total",
			Help:      "Notification fan-outs attempted for newly persisted events.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "notifications_sent_total",
			Help:      "Alert emails delivered to subscribers.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_monitor",
			Name:      "notifications_failed_total",
			Help:      "Alert emails that failed to send (isolated per recipient).",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_monitor",
			Name:      "pipeline_running",
			Help:      "1 while a tick is executing, 0 otherwise.",
		}),
	}
}
