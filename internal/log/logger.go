// Package log configures the process-wide slog logger. The component name is
// attached once here, so every package can log through the plain slog API and
// still produce records tagged with the owning binary.
package log

import (
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler when set (tests).
	Handler slog.Handler
}

// Logger is the configured slog logger.
type Logger struct {
	*slog.Logger
}

// New builds a logger with the component attribute baked in.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	l := slog.New(handler)
	if config.Component != "" {
		l = l.With("component", config.Component)
	}
	return &Logger{Logger: l}
}

// SetDefault installs the logger as the process default, so package-level
// slog calls inherit its handler and component tag.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
