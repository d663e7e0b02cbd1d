package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "./data/shataku.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.FlushWindow != 100*time.Millisecond {
		t.Errorf("FlushWindow = %v, want 100ms", cfg.FlushWindow)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHATAKU_DB_PATH", "/tmp/alt.db")
	t.Setenv("SHATAKU_FLUSH_WINDOW", "250ms")
	t.Setenv("SHATAKU_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/alt.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.FlushWindow != 250*time.Millisecond {
		t.Errorf("FlushWindow = %v", cfg.FlushWindow)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		return &Config{
			DBPath:      filepath.Join(t.TempDir(), "db", "shataku.db"),
			FlushWindow: 100 * time.Millisecond,
			LogLevel:    "info",
		}
	}

	t.Run("valid creates database directory", func(t *testing.T) {
		cfg := base(t)
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("empty db path", func(t *testing.T) {
		cfg := base(t)
		cfg.DBPath = ""
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error")
		}
	})

	t.Run("zero flush window", func(t *testing.T) {
		cfg := base(t)
		cfg.FlushWindow = 0
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "flush window") {
			t.Errorf("err = %v, want flush window complaint", err)
		}
	})

	t.Run("flush window too large", func(t *testing.T) {
		cfg := base(t)
		cfg.FlushWindow = time.Minute
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error")
		}
	})

	t.Run("combined errors", func(t *testing.T) {
		cfg := &Config{DBPath: "", FlushWindow: 0, LogLevel: "loud"}
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("expected error")
		}
		for _, want := range []string{"database path", "flush window", "log level"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("combined error missing %q: %v", want, err)
			}
		}
	})
}

func TestSlogLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		cfg := &Config{LogLevel: tc.in}
		got, err := cfg.SlogLevel()
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("SlogLevel(%q) = %v, %v; want %v, err %v", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
