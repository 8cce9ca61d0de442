package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhakaquake/quake-monitor/internal/domain"
)

const testDatabaseURL = "postgres://localhost:5432/quake?sslmode=disable"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", testDatabaseURL)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 2*time.Minute, cfg.CheckInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, domain.BoundingBox{MinLat: 18, MaxLat: 29, MinLon: 86, MaxLon: 95}, cfg.Region)
	assert.Equal(t, domain.DefaultReferencePoints, cfg.ReferencePoints)
	assert.Equal(t, "Asia/Dhaka", cfg.DisplayTimezone)
	assert.False(t, cfg.MailEnabled)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", testDatabaseURL)
	t.Setenv("FEED_URL", "http://localhost:9100/feed.geojson")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("CHECK_INTERVAL", "30s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("REGION_MIN_LAT", "20")
	t.Setenv("REGION_MAX_LAT", "26")
	t.Setenv("REGION_MIN_LON", "88")
	t.Setenv("REGION_MAX_LON", "93")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "alerts@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9100/feed.geojson", cfg.FeedURL)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, domain.BoundingBox{MinLat: 20, MaxLat: 26, MinLon: 88, MaxLon: 93}, cfg.Region)
	assert.True(t, cfg.MailEnabled)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "alerts@example.com", cfg.SMTPFrom)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing database URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testDatabaseURL)
		t.Setenv("CHECK_INTERVAL", "soon")
		_, err := Load()
		require.ErrorContains(t, err, "CHECK_INTERVAL")
	})

	t.Run("inverted region", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testDatabaseURL)
		t.Setenv("REGION_MIN_LAT", "30")
		t.Setenv("REGION_MAX_LAT", "20")
		_, err := Load()
		require.ErrorContains(t, err, "inverted")
	})

	t.Run("mail enabled without from address", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testDatabaseURL)
		t.Setenv("MAIL_ENABLED", "true")
		_, err := Load()
		require.ErrorContains(t, err, "SMTP_FROM")
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("DATABASE_URL", testDatabaseURL)
		t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		require.ErrorContains(t, err, "DISPLAY_TIMEZONE")
	})
}

func TestLoadReferencePoints(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeTempFile(t, `
reference_points:
  - name: Dhaka
    lat: 23.8103
    lon: 90.4125
  - name: Sylhet
    lat: 24.8949
    lon: 91.8687
`)
		points, err := LoadReferencePoints(path)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, "Dhaka", points[0].Name)
		assert.Equal(t, 24.8949, points[1].Lat)
	})

	t.Run("empty table rejected", func(t *testing.T) {
		path := writeTempFile(t, "reference_points: []\n")
		_, err := LoadReferencePoints(path)
		require.ErrorContains(t, err, "no points")
	})

	t.Run("unnamed point rejected", func(t *testing.T) {
		path := writeTempFile(t, "reference_points:\n  - lat: 1\n    lon: 2\n")
		_, err := LoadReferencePoints(path)
		require.ErrorContains(t, err, "no name")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadReferencePoints(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
