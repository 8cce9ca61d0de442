// Package usgs fetches earthquake snapshots from the USGS GeoJSON summary feed.
package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/observability"
)

// Client retrieves the current feed snapshot. It performs a single request
// per call with a bounded timeout and no internal retry; the scheduler's
// next tick is the retry.
type Client struct {
	feedURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client for the given snapshot URL.
func NewClient(feedURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchSnapshot downloads and parses the current feed snapshot, returning
// every valid candidate event worldwide. Malformed entries are skipped and
// logged; a request failure, non-2xx status, or unparseable body fails the
// whole fetch.
func (c *Client) FetchSnapshot(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	candidates, skipped, err := domain.ParseFeed(body)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		c.metrics.ValidationSkips.Add(float64(skipped))
		c.logger.Warn("skipped malformed feed entries", "skipped", skipped, "valid", len(candidates))
	}

	return candidates, nil
}
