package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	httpadapter "github.com/dhakaquake/quake-monitor/internal/adapter/http"
	"github.com/dhakaquake/quake-monitor/internal/adapter/smtp"
	"github.com/dhakaquake/quake-monitor/internal/adapter/usgs"
	"github.com/dhakaquake/quake-monitor/internal/config"
	"github.com/dhakaquake/quake-monitor/internal/notify"
	"github.com/dhakaquake/quake-monitor/internal/observability"
	"github.com/dhakaquake/quake-monitor/internal/pipeline"
	"github.com/dhakaquake/quake-monitor/internal/scheduler"
	"github.com/dhakaquake/quake-monitor/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	st := postgres.NewStore(db)

	fetcher := usgs.NewClient(cfg.FeedURL, cfg.FeedTimeout, logger, metrics)

	// Alerts are feature-flagged via SMTP_HOST / MAIL_ENABLED.
	var sender notify.Sender
	if cfg.MailEnabled {
		sender = smtp.NewSender(cfg)
		logger.Info("email alerts enabled", "smtp_host", cfg.SMTPHost, "from", cfg.SMTPFrom)
	} else {
		logger.Info("email alerts disabled")
	}

	location, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Warn("unknown display timezone, falling back to UTC", "timezone", cfg.DisplayTimezone)
		location = time.UTC
	}

	notifier := notify.New(st.Subscribers(), sender, logger, metrics, location)
	p := pipeline.New(fetcher, st.Events(), notifier, cfg.Region, cfg.ReferencePoints, logger, metrics)
	sched := scheduler.New(p, cfg.CheckInterval, clockwork.NewRealClock(), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, st, sched, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the periodic feed check.
	go func() {
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
