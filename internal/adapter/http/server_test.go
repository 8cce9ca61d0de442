package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/dhakaquake/quake-monitor/internal/adapter/http"
	"github.com/dhakaquake/quake-monitor/internal/domain"
	"github.com/dhakaquake/quake-monitor/internal/pipeline"
	"github.com/dhakaquake/quake-monitor/internal/store"
	"github.com/dhakaquake/quake-monitor/internal/store/memory"
)

// --- fakes ---

type fakeTrigger struct {
	summary pipeline.Summary
	busy    bool
	err     error
}

func (f *fakeTrigger) TryTick(_ context.Context) (pipeline.Summary, bool, error) {
	if f.busy {
		return pipeline.Summary{}, false, nil
	}
	return f.summary, true, f.err
}

type fakeReady struct {
	err error
}

func (f *fakeReady) CheckReadiness(_ context.Context) error { return f.err }

type fixture struct {
	server  *httpadapter.Server
	store   store.Interface
	trigger *fakeTrigger
	ready   *fakeReady
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	trigger := &fakeTrigger{summary: pipeline.Summary{Fetched: 10, InRegion: 2, New: 1, Known: 1}}
	ready := &fakeReady{}
	return &fixture{
		server:  httpadapter.NewServer(":0", st, trigger, ready, slog.Default()),
		store:   st,
		trigger: trigger,
		ready:   ready,
	}
}

func (f *fixture) request(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) addEvent(t *testing.T, id string, magnitude float64, occurred time.Time) {
	t.Helper()
	require.NoError(t, f.store.Events().Insert(context.Background(), &domain.SeismicEvent{
		ExternalID:        id,
		Magnitude:         magnitude,
		Location:          "near Dhaka",
		NearestReference:  "Dhaka",
		ReferenceDistance: 25,
		Depth:             10,
		OccurredAt:        occurred,
		CreatedAt:         occurred,
	}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// --- tests ---

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	f.ready.err = errors.New("no tick yet")
	rec = f.request(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListEarthquakes(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.addEvent(t, "old", 3.0, now.Add(-2*time.Hour))
	f.addEvent(t, "new", 4.5, now)

	t.Run("newest first", func(t *testing.T) {
		rec := f.request(t, http.MethodGet, "/api/earthquakes", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var events []domain.SeismicEvent
		decode(t, rec, &events)
		require.Len(t, events, 2)
		assert.Equal(t, "new", events[0].ExternalID)
	})

	t.Run("limit applies", func(t *testing.T) {
		rec := f.request(t, http.MethodGet, "/api/earthquakes?limit=1", "")
		var events []domain.SeismicEvent
		decode(t, rec, &events)
		assert.Len(t, events, 1)
	})

	t.Run("bad limit rejected", func(t *testing.T) {
		rec := f.request(t, http.MethodGet, "/api/earthquakes?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLatest(t *testing.T) {
	t.Run("empty store reports safe", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, http.MethodGet, "/api/latest", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		decode(t, rec, &resp)
		assert.Equal(t, "safe", resp["status"])
	})

	t.Run("enriched with classification", func(t *testing.T) {
		f := newFixture(t)
		f.addEvent(t, "us1", 4.3, time.Now().UTC().Add(-90*time.Minute))

		rec := f.request(t, http.MethodGet, "/api/latest", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		decode(t, rec, &resp)
		assert.Equal(t, "us1", resp["external_id"])
		assert.Equal(t, "Light", resp["intensity"])
		assert.Equal(t, "V-VI", resp["mercalli"])
		assert.InDelta(t, 1.5, resp["hours_since"], 0.1)
	})
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.addEvent(t, "today", 5.0, now)
	f.addEvent(t, "thisweek", 4.0, now.AddDate(0, 0, -3))
	f.addEvent(t, "thismonth", 3.0, now.AddDate(0, 0, -20))

	rec := f.request(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Today struct {
			Count int `json:"count"`
		} `json:"today"`
		Weekly struct {
			Count   int     `json:"count"`
			Average float64 `json:"average"`
			Largest float64 `json:"largest"`
		} `json:"weekly"`
		Monthly struct {
			Count int `json:"count"`
		} `json:"monthly"`
		AllTime           int64 `json:"all_time"`
		ActiveSubscribers int64 `json:"active_subscribers"`
	}
	decode(t, rec, &resp)

	assert.Equal(t, 1, resp.Today.Count)
	assert.Equal(t, 2, resp.Weekly.Count)
	assert.Equal(t, 4.5, resp.Weekly.Average)
	assert.Equal(t, 5.0, resp.Weekly.Largest)
	assert.Equal(t, 3, resp.Monthly.Count)
	assert.EqualValues(t, 3, resp.AllTime)
	assert.Zero(t, resp.ActiveSubscribers)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.addEvent(t, "older", 3.5, now.AddDate(0, 0, -2))
	f.addEvent(t, "newer", 4.2, now.Add(-time.Hour))

	rec := f.request(t, http.MethodGet, "/api/timeline?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Date      string  `json:"date"`
		Magnitude float64 `json:"magnitude"`
		Location  string  `json:"location"`
	}
	decode(t, rec, &entries)

	require.Len(t, entries, 2)
	// Oldest first.
	assert.Equal(t, 3.5, entries[0].Magnitude)
	assert.Equal(t, 4.2, entries[1].Magnitude)
	assert.Equal(t, "Dhaka", entries[0].Location)
}

func TestSubscribe(t *testing.T) {
	t.Run("creates subscriber with normalized email", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, http.MethodPost, "/api/subscribe", `{"email":"  Alerts@Example.COM ","magnitude_threshold":5.0}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		sub, err := f.store.Subscribers().FindByEmail(context.Background(), "alerts@example.com")
		require.NoError(t, err)
		assert.Equal(t, 5.0, sub.MagnitudeThreshold)
		assert.True(t, sub.IsActive)
	})

	t.Run("defaults threshold to 4.0", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, http.MethodPost, "/api/subscribe", `{"email":"a@example.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		sub, err := f.store.Subscribers().FindByEmail(context.Background(), "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, 4.0, sub.MagnitudeThreshold)
	})

	t.Run("updating reactivates", func(t *testing.T) {
		f := newFixture(t)
		f.request(t, http.MethodPost, "/api/subscribe", `{"email":"a@example.com","magnitude_threshold":4.0}`)
		f.request(t, http.MethodPost, "/api/unsubscribe", `{"email":"a@example.com"}`)

		rec := f.request(t, http.MethodPost, "/api/subscribe", `{"email":"a@example.com","magnitude_threshold":6.0}`)
		require.Equal(t, http.StatusOK, rec.Code)

		sub, err := f.store.Subscribers().FindByEmail(context.Background(), "a@example.com")
		require.NoError(t, err)
		assert.True(t, sub.IsActive)
		assert.Equal(t, 6.0, sub.MagnitudeThreshold)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, http.MethodPost, "/api/subscribe", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects out-of-bounds threshold", func(t *testing.T) {
		f := newFixture(t)
		for _, body := range []string{
			`{"email":"a@example.com","magnitude_threshold":2.4}`,
			`{"email":"a@example.com","magnitude_threshold":10.1}`,
		} {
			rec := f.request(t, http.MethodPost, "/api/subscribe", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	t.Run("unknown email is 404", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, http.MethodPost, "/api/unsubscribe", `{"email":"ghost@example.com"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deactivates existing", func(t *testing.T) {
		f := newFixture(t)
		f.request(t, http.MethodPost, "/api/subscribe", `{"email":"a@example.com"}`)

		rec := f.request(t, http.MethodPost, "/api/unsubscribe", `{"email":"A@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		sub, err := f.store.Subscribers().FindByEmail(context.Background(), "a@example.com")
		require.NoError(t, err)
		assert.False(t, sub.IsActive)
	})
}

func TestManualCheck(t *testing.T) {
	t.Run("runs a tick and reports totals", func(t *testing.T) {
		f := newFixture(t)
		f.addEvent(t, "us1", 4.0, time.Now().UTC())

		rec := f.request(t, http.MethodPost, "/api/check", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Summary     pipeline.Summary `json:"summary"`
			TotalEvents int64            `json:"total_events"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, 1, resp.Summary.New)
		assert.EqualValues(t, 1, resp.TotalEvents)
	})

	t.Run("conflict while a tick is running", func(t *testing.T) {
		f := newFixture(t)
		f.trigger.busy = true
		rec := f.request(t, http.MethodPost, "/api/check", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("tick failure is an internal error", func(t *testing.T) {
		f := newFixture(t)
		f.trigger.err = errors.New("store down")
		rec := f.request(t, http.MethodPost, "/api/check", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
