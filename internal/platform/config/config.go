// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBackendURL is used when LEARN_BACKEND_URL is unset.
const DefaultBackendURL = "http://localhost:8000"

// Config holds all application configuration.
type Config struct {
	Backend     BackendConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Log         LogConfig
	ContentPath string
}

// BackendConfig holds settings for the learning API.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings for the attempt log.
// An empty URL disables it.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings for the progress tally.
// An empty URL keeps the tally in memory.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Backend: BackendConfig{
			URL:     strings.TrimRight(envStr("LEARN_BACKEND_URL", DefaultBackendURL), "/"),
			Timeout: time.Duration(envInt("LEARN_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 5),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("LEARN_CACHE_URL", ""),
			TTL: time.Duration(envInt("LEARN_CACHE_TTL_HOURS", 168)) * time.Hour,
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "text"),
		},
		ContentPath: envStr("LEARN_CONTENT_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ContentPath == "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("LEARN_BACKEND_URL is invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("LEARN_BACKEND_URL must be http or https, got %q", c.Backend.URL)
		}
		if u.Host == "" {
			return fmt.Errorf("LEARN_BACKEND_URL has no host: %q", c.Backend.URL)
		}
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("LEARN_HTTP_TIMEOUT_SECONDS must be positive")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// Offline reports whether content comes from the local YAML catalogue.
func (c *Config) Offline() bool {
	return c.ContentPath != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
