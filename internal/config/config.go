package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the process configuration, populated from the environment.
type Config struct {
	DBPath string `env:"SHATAKU_DB_PATH" envDefault:"./data/shataku.db"`

	// Legacy flat-document import (optional).
	LegacyPath          string `env:"SHATAKU_LEGACY_PATH" envDefault:"./data/legacy.json"`
	LegacySnapshotsPath string `env:"SHATAKU_LEGACY_SNAPSHOTS_PATH" envDefault:"./data/legacy-snapshots.json"`

	// FlushWindow is the write-coalescing debounce window.
	FlushWindow time.Duration `env:"SHATAKU_FLUSH_WINDOW" envDefault:"100ms"`

	LogLevel string `env:"SHATAKU_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and returns one combined error.
func (c *Config) Validate() error {
	var errs []string

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
			}
		}
	}

	if c.FlushWindow <= 0 {
		errs = append(errs, fmt.Sprintf("invalid flush window %v: must be positive", c.FlushWindow))
	} else if c.FlushWindow > 10*time.Second {
		errs = append(errs, fmt.Sprintf("invalid flush window %v: must be at most 10s", c.FlushWindow))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.LogLevel)
	}
}
