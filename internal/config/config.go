package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dhakaquake/quake-monitor/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL       string
	FeedTimeout   time.Duration
	CheckInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL string

	Region              domain.BoundingBox
	ReferencePointsFile string
	ReferencePoints     []domain.ReferencePoint

	DisplayTimezone string

	// SMTP alert delivery configuration. Alerts are disabled when SMTPHost
	// is unset (the pipeline still runs and persists events).
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	MailEnabled  bool
}

const defaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_month.geojson"

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	checkInterval, err := parseDuration("CHECK_INTERVAL", "2m")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	region, err := parseRegion()
	if err != nil {
		return nil, err
	}

	smtpPort, err := parseInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	smtpHost := os.Getenv("SMTP_HOST")
	mailEnabled := smtpHost != ""
	if v := os.Getenv("MAIL_ENABLED"); v != "" {
		mailEnabled = v == "true"
	}

	cfg := &Config{
		FeedURL:             envOrDefault("FEED_URL", defaultFeedURL),
		FeedTimeout:         feedTimeout,
		CheckInterval:       checkInterval,
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Region:              region,
		ReferencePointsFile: os.Getenv("REFERENCE_POINTS_FILE"),
		DisplayTimezone:     envOrDefault("DISPLAY_TIMEZONE", "Asia/Dhaka"),

		SMTPHost:     smtpHost,
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     envOrDefault("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
		MailEnabled:  mailEnabled,
	}

	cfg.ReferencePoints = domain.DefaultReferencePoints
	if cfg.ReferencePointsFile != "" {
		points, err := LoadReferencePoints(cfg.ReferencePointsFile)
		if err != nil {
			return nil, err
		}
		cfg.ReferencePoints = points
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.MailEnabled && cfg.SMTPFrom == "" {
		return nil, errors.New("SMTP_FROM is required when mail is enabled")
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", cfg.DisplayTimezone, err)
	}

	return cfg, nil
}

// referencePointsFile is the YAML document shape for REFERENCE_POINTS_FILE.
type referencePointsFile struct {
	ReferencePoints []domain.ReferencePoint `yaml:"reference_points"`
}

// LoadReferencePoints reads a reference-point table from a YAML file.
// The file must contain at least one named point. Table order is preserved
// because it decides nearest-point tie-breaks.
func LoadReferencePoints(path string) ([]domain.ReferencePoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference points file: %w", err)
	}

	var doc referencePointsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse reference points file %s: %w", path, err)
	}

	if len(doc.ReferencePoints) == 0 {
		return nil, fmt.Errorf("reference points file %s contains no points", path)
	}
	for i, p := range doc.ReferencePoints {
		if p.Name == "" {
			return nil, fmt.Errorf("reference point %d in %s has no name", i, path)
		}
	}

	return doc.ReferencePoints, nil
}

func parseRegion() (domain.BoundingBox, error) {
	minLat, err := parseFloat("REGION_MIN_LAT", 18)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	maxLat, err := parseFloat("REGION_MAX_LAT", 29)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	minLon, err := parseFloat("REGION_MIN_LON", 86)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	maxLon, err := parseFloat("REGION_MAX_LON", 95)
	if err != nil {
		return domain.BoundingBox{}, err
	}

	if minLat > maxLat || minLon > maxLon {
		return domain.BoundingBox{}, errors.New("region bounding box is inverted")
	}

	return domain.BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
