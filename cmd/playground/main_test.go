package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/pai-playground/internal/api"
	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/events"
	"github.com/p-n-ai/pai-playground/internal/platform/config"
	"github.com/p-n-ai/pai-playground/internal/progress"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "topic_id", "t1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["topic_id"] != "t1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "info", Format: "text"}, &buf).Info("hello", "k", "v")

	if !strings.Contains(buf.String(), "msg=hello k=v") {
		t.Errorf("text log = %q", buf.String())
	}
}

func TestNewSource_API(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendConfig{URL: "http://api.test", Timeout: time.Second}}

	src, label, err := newSource(cfg)
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	if _, ok := src.(*api.Client); !ok {
		t.Errorf("source = %T, want *api.Client", src)
	}
	if label != "http://api.test" {
		t.Errorf("label = %q", label)
	}
}

func TestNewSource_Offline(t *testing.T) {
	dir := t.TempDir()
	content := []byte("id: t1\ntitle: Basics\nlessons: []\n")
	if err := os.WriteFile(filepath.Join(dir, "basics.yaml"), content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	src, label, err := newSource(&config.Config{ContentPath: dir})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	if _, ok := src.(*curriculum.Loader); !ok {
		t.Errorf("source = %T, want *curriculum.Loader", src)
	}
	if label != dir {
		t.Errorf("label = %q, want %q", label, dir)
	}

	topics, err := src.Topics(t.Context())
	if err != nil {
		t.Fatalf("Topics() error = %v", err)
	}
	if len(topics) != 1 || topics[0].ID != "t1" {
		t.Errorf("topics = %+v", topics)
	}
}

func TestNewSource_OfflineMissingDir(t *testing.T) {
	_, _, err := newSource(&config.Config{ContentPath: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected error for missing content directory")
	}
}

func TestOptionalBackendsDefaultToLocal(t *testing.T) {
	logger, closeDB := openEventLogger(t.Context(), config.DatabaseConfig{})
	defer closeDB()
	if _, ok := logger.(events.NopLogger); !ok {
		t.Errorf("logger = %T, want events.NopLogger", logger)
	}

	tracker, closeCache := openTracker(t.Context(), config.CacheConfig{})
	defer closeCache()
	if _, ok := tracker.(*progress.InMemoryTracker); !ok {
		t.Errorf("tracker = %T, want *progress.InMemoryTracker", tracker)
	}
}

func TestOptionalBackendsFallBackOnBadURL(t *testing.T) {
	logger, closeDB := openEventLogger(t.Context(), config.DatabaseConfig{URL: "::not a url::"})
	defer closeDB()
	if _, ok := logger.(events.NopLogger); !ok {
		t.Errorf("logger = %T, want events.NopLogger", logger)
	}

	tracker, closeCache := openTracker(t.Context(), config.CacheConfig{URL: "http://not-redis"})
	defer closeCache()
	if _, ok := tracker.(*progress.InMemoryTracker); !ok {
		t.Errorf("tracker = %T, want *progress.InMemoryTracker", tracker)
	}
}
