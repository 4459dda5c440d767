package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-playground/internal/api"
	"github.com/p-n-ai/pai-playground/internal/app"
	"github.com/p-n-ai/pai-playground/internal/console"
	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/events"
	"github.com/p-n-ai/pai-playground/internal/platform/cache"
	"github.com/p-n-ai/pai-playground/internal/platform/config"
	"github.com/p-n-ai/pai-playground/internal/platform/database"
	"github.com/p-n-ai/pai-playground/internal/progress"
	"github.com/p-n-ai/pai-playground/internal/viewer"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log, os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	source, label, err := newSource(cfg)
	if err != nil {
		slog.Error("failed to open content source", "error", err)
		os.Exit(1)
	}

	logger, closeDB := openEventLogger(ctx, cfg.Database)
	defer closeDB()
	tracker, closeCache := openTracker(ctx, cfg.Cache)
	defer closeCache()

	sessionID := uuid.NewString()
	rec := console.NewRecorder(sessionID, logger, tracker)
	a := app.New(source, app.WithViewerOptions(viewer.WithGradeHook(rec.OnGrade)))

	slog.Info("playground starting", "source", label, "session_id", sessionID)
	if err := a.LoadTopics(ctx); err != nil {
		// Shown on screen as a failed topic list.
		slog.Warn("initial topic load failed", "error", err)
	}

	engine := console.NewEngine(console.EngineConfig{App: a, Source: label, Recorder: rec})
	if err := console.Run(ctx, engine, os.Stdin, os.Stdout); err != nil {
		slog.Error("console error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the slog logger described by cfg, writing to w.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newSource picks the offline catalogue when a content path is configured and
// the learning API otherwise. The label is shown in the header.
func newSource(cfg *config.Config) (app.Source, string, error) {
	if cfg.Offline() {
		loader, err := curriculum.NewLoader(cfg.ContentPath)
		if err != nil {
			return nil, "", err
		}
		return loader, cfg.ContentPath, nil
	}
	client := api.New(cfg.Backend.URL, api.WithTimeout(cfg.Backend.Timeout))
	return client, client.BaseURL(), nil
}

// openEventLogger connects the attempt log when a database is configured.
// Connection problems fall back to a no-op logger so grading keeps working.
func openEventLogger(ctx context.Context, cfg config.DatabaseConfig) (events.Logger, func()) {
	if cfg.URL == "" {
		return events.NopLogger{}, func() {}
	}
	db, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Warn("attempt log disabled", "error", err)
		return events.NopLogger{}, func() {}
	}
	logger := events.NewPostgresLogger(db.Pool)
	if err := logger.EnsureSchema(ctx); err != nil {
		slog.Warn("attempt log disabled", "error", err)
		db.Close()
		return events.NopLogger{}, func() {}
	}
	slog.Info("attempt log enabled")
	return logger, db.Close
}

// openTracker uses Redis for the progress tally when a cache is configured.
func openTracker(ctx context.Context, cfg config.CacheConfig) (progress.Tracker, func()) {
	if cfg.URL == "" {
		return progress.NewInMemoryTracker(), func() {}
	}
	c, err := cache.Open(ctx, cfg.URL)
	if err != nil {
		slog.Warn("shared progress disabled", "error", err)
		return progress.NewInMemoryTracker(), func() {}
	}
	slog.Info("shared progress enabled")
	return progress.NewRedisTracker(c.Client, cfg.TTL), func() { _ = c.Close() }
}
