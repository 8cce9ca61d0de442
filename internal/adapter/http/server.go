// Package http exposes the REST API over the stored events and subscribers,
// plus health, readiness, and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/pipeline"
	"github.com/dhakaquake/quake-monitor/internal/store"
)

const (
	defaultListLimit   = 100
	maxListLimit       = 1000
	defaultTimelineDay = 7

	minThreshold     = 2.5
	maxThreshold     = 10.0
	defaultThreshold = 4.0
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// TickTrigger runs one ingestion tick unless one is already in flight.
type TickTrigger interface {
	TryTick(ctx context.Context) (pipeline.Summary, bool, error)
}

// Server hosts the REST API.
type Server struct {
	echo        *echo.Echo
	addr        string
	logger      *slog.Logger
	events      store.EventStore
	subscribers store.SubscriberStore
	trigger     TickTrigger
	ready       ReadinessChecker
}

// NewServer wires all routes over the given collaborators.
func NewServer(addr string, st store.Interface, trigger TickTrigger, ready ReadinessChecker, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:        e,
		addr:        addr,
		logger:      logger,
		events:      st.Events(),
		subscribers: st.Subscribers(),
		trigger:     trigger,
		ready:       ready,
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/readyz", s.handleReady)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/earthquakes", s.handleListEarthquakes)
	api.GET("/latest", s.handleLatest)
	api.GET("/stats", s.handleStats)
	api.GET("/timeline", s.handleTimeline)
	api.POST("/subscribe", s.handleSubscribe)
	api.POST("/unsubscribe", s.handleUnsubscribe)
	api.POST("/check", s.handleCheck)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.addr)
	return s.echo.Start(s.addr)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListEarthquakes(c echo.Context) error {
	limit := defaultListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = min(n, maxListLimit)
	}

	events, err := s.events.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return s.internalError(c, "list earthquakes", err)
	}
	return c.JSON(http.StatusOK, events)
}

type latestResponse struct {
	domain.SeismicEvent
	Intensity  string  `json:"intensity"`
	Mercalli   string  `json:"mercalli"`
	HoursSince float64 `json:"hours_since"`
}

func (s *Server) handleLatest(c echo.Context) error {
	latest, err := s.events.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusOK, map[string]string{
				"status":  "safe",
				"message": "No recent earthquakes",
			})
		}
		return s.internalError(c, "latest earthquake", err)
	}

	hours := time.Since(latest.OccurredAt).Hours()
	return c.JSON(http.StatusOK, latestResponse{
		SeismicEvent: *latest,
		Intensity:    domain.Intensity(latest.Magnitude),
		Mercalli:     domain.Mercalli(latest.Magnitude),
		HoursSince:   roundTo(hours, 1),
	})
}

type periodStats struct {
	Count       int                   `json:"count"`
	Average     float64               `json:"average"`
	Largest     float64               `json:"largest"`
	Earthquakes []domain.SeismicEvent `json:"earthquakes,omitempty"`
}

type statsResponse struct {
	Today             periodStats `json:"today"`
	Weekly            periodStats `json:"weekly"`
	Monthly           periodStats `json:"monthly"`
	AllTime           int64       `json:"all_time"`
	ActiveSubscribers int64       `json:"active_subscribers"`
}

func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	today, err := s.events.ListSince(ctx, startOfDay)
	if err != nil {
		return s.internalError(c, "stats", err)
	}
	weekly, err := s.events.ListSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return s.internalError(c, "stats", err)
	}
	monthly, err := s.events.ListSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return s.internalError(c, "stats", err)
	}
	total, err := s.events.Count(ctx)
	if err != nil {
		return s.internalError(c, "stats", err)
	}
	active, err := s.subscribers.CountActive(ctx)
	if err != nil {
		return s.internalError(c, "stats", err)
	}

	return c.JSON(http.StatusOK, statsResponse{
		Today:             summarize(today, true),
		Weekly:            summarize(weekly, true),
		Monthly:           summarize(monthly, false),
		AllTime:           total,
		ActiveSubscribers: active,
	})
}

func summarize(events []domain.SeismicEvent, includeList bool) periodStats {
	stats := periodStats{Count: len(events)}
	if includeList {
		stats.Earthquakes = events
	}
	if len(events) == 0 {
		return stats
	}

	var sum float64
	for _, e := range events {
		sum += e.Magnitude
		if e.Magnitude > stats.Largest {
			stats.Largest = e.Magnitude
		}
	}
	stats.Average = roundTo(sum/float64(len(events)), 2)
	return stats
}

type timelineEntry struct {
	Date      string  `json:"date"`
	Magnitude float64 `json:"magnitude"`
	Location  string  `json:"location"`
}

func (s *Server) handleTimeline(c echo.Context) error {
	days := defaultTimelineDay
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
		}
		days = n
	}

	events, err := s.events.ListSince(c.Request().Context(), time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return s.internalError(c, "timeline", err)
	}

	// ListSince returns newest first; the timeline reads oldest first.
	entries := make([]timelineEntry, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		entries = append(entries, timelineEntry{
			Date:      e.OccurredAt.Format("2006-01-02"),
			Magnitude: e.Magnitude,
			Location:  e.NearestReference,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// SubscribeRequest creates or updates an alert subscription.
type SubscribeRequest struct {
	Email              string  `json:"email"`
	MagnitudeThreshold float64 `json:"magnitude_threshold"`
}

func (s *Server) handleSubscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "valid email required"})
	}

	threshold := req.MagnitudeThreshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold < minThreshold || threshold > maxThreshold {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "magnitude_threshold must be between 2.5 and 10.0"})
	}

	ctx := c.Request().Context()
	existing, err := s.subscribers.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return s.internalError(c, "subscribe", err)
	}

	if existing != nil {
		existing.MagnitudeThreshold = threshold
		existing.IsActive = true
		if err := s.subscribers.Upsert(ctx, existing); err != nil {
			return s.internalError(c, "subscribe", err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"message":    "Subscription updated",
			"subscriber": existing,
		})
	}

	sub := &domain.Subscriber{
		ID:                 uuid.New(),
		Email:              email,
		MagnitudeThreshold: threshold,
		IsActive:           true,
		SubscribedAt:       time.Now().UTC(),
	}
	if err := s.subscribers.Upsert(ctx, sub); err != nil {
		return s.internalError(c, "subscribe", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "Successfully subscribed",
		"subscriber": sub,
	})
}

// UnsubscribeRequest deactivates an alert subscription.
type UnsubscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleUnsubscribe(c echo.Context) error {
	var req UnsubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	err := s.subscribers.Deactivate(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "email not found"})
		}
		return s.internalError(c, "unsubscribe", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Successfully unsubscribed"})
}

func (s *Server) handleCheck(c echo.Context) error {
	ctx := c.Request().Context()

	summary, ran, err := s.trigger.TryTick(ctx)
	if !ran {
		return c.JSON(http.StatusConflict, map[string]string{"error": "a check is already running"})
	}
	if err != nil {
		return s.internalError(c, "manual check", err)
	}

	total, err := s.events.Count(ctx)
	if err != nil {
		return s.internalError(c, "manual check", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Check completed",
		"summary":      summary,
		"total_events": total,
		"timestamp":    time.Now().UTC(),
	})
}

func (s *Server) internalError(c echo.Context, op string, err error) error {
	s.logger.Error("request failed", "op", op, "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
