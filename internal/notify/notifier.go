// Package notify fans alert emails out to matched subscribers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/observability"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

// Sender is a pluggable mail delivery interface.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier matches subscribers against an event's magnitude and dispatches
// one alert per recipient. Delivery failures are isolated: each is logged
// and counted, none fails the batch, and nothing is retried.
type Notifier struct {
	subscribers store.SubscriberStore
	sender      Sender
	logger      *slog.Logger
	metrics     *observability.Metrics
	location    *time.Location
}

// New creates a Notifier. A nil sender disables delivery entirely (the
// pipeline still runs; matched recipients are logged at debug level).
func New(subscribers store.SubscriberStore, sender Sender, logger *slog.Logger, metrics *observability.Metrics, location *time.Location) *Notifier {
	if location == nil {
		location = time.UTC
	}
	return &Notifier{
		subscribers: subscribers,
		sender:      sender,
		logger:      logger,
		metrics:     metrics,
		location:    location,
	}
}

// Notify sends the alert batch for a newly persisted event. Matching and
// dispatch errors never propagate; the event is already committed and
// notifications are best-effort.
func (n *Notifier) Notify(ctx context.Context, event domain.SeismicEvent) {
	matched, err := n.subscribers.ListActive(ctx, event.Magnitude)
	if err != nil {
		n.logger.Error("subscriber match failed",
			"external_id", event.ExternalID,
			"magnitude", event.Magnitude,
			"error", err,
		)
		return
	}

	if len(matched) == 0 {
		return
	}

	n.metrics.NotificationBatches.Inc()

	if n.sender == nil {
		n.logger.Debug("mail disabled, skipping dispatch",
			"external_id", event.ExternalID,
			"recipients", len(matched),
		)
		return
	}

	subject := buildSubject(event)
	body := n.buildBody(event)

	var wg sync.WaitGroup
	for _, sub := range matched {
		wg.Add(1)
		go func(recipient string) {
			defer wg.Done()
			if err := n.sender.Send(ctx, recipient, subject, body); err != nil {
				n.metrics.NotificationsFailed.Inc()
				n.logger.Error("alert delivery failed",
					"external_id", event.ExternalID,
					"recipient", recipient,
					"error", err,
				)
				return
			}
			n.metrics.NotificationsSent.Inc()
		}(sub.Email)
	}
	wg.Wait()

	n.logger.Info("alert batch dispatched",
		"external_id", event.ExternalID,
		"magnitude", event.Magnitude,
		"recipients", len(matched),
	)
}

func buildSubject(event domain.SeismicEvent) string {
	return fmt.Sprintf("EARTHQUAKE ALERT: Magnitude %.1f", event.Magnitude)
}

func (n *Notifier) buildBody(event domain.SeismicEvent) string {
	return fmt.Sprintf(
		"Earthquake Alert\n\n"+
			"Magnitude: %.1f\n"+
			"Location: %s\n"+
			"Nearest City: %s (%d km)\n"+
			"Depth: %.1f km\n"+
			"Time: %s\n",
		event.Magnitude,
		event.Location,
		event.NearestReference,
		event.ReferenceDistance,
		event.Depth,
		event.OccurredAt.In(n.location).Format("Jan 2, 2006 3:04:05 PM MST"),
	)
}
