// Package log configures the zerolog logger shared by the CLI and loaders.
// The transcoding core never logs.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Console bool      // human-readable output instead of JSON lines
}

var (
	mu         sync.RWMutex
	base       zerolog.Logger
	configured bool
)

// New builds a logger from cfg without touching global state.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", "recmap").
		Logger()
}

// Configure installs the global logger. A later call replaces the earlier
// one, so command line flags win over defaults picked up by Base.
func Configure(cfg Config) {
	l := New(cfg)
	mu.Lock()
	defer mu.Unlock()
	zerolog.TimeFieldFormat = time.RFC3339
	base, configured = l, true
}

// Base returns the configured base logger instance, configuring defaults on
// first use.
func Base() zerolog.Logger {
	mu.RLock()
	l, ok := base, configured
	mu.RUnlock()
	if ok {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if !configured {
		zerolog.TimeFieldFormat = time.RFC3339
		base, configured = New(Config{}), true
	}
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
