// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// SeedFile optionally replaces the embedded activity dataset.
	SeedFile string `koanf:"seed_file"`

	// EnforceCapacity rejects signups once an activity reaches max_participants.
	EnforceCapacity bool `koanf:"enforce_capacity"`

	// QueueSize bounds the roster change queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of roster change workers.
	WorkerCount int `koanf:"worker_count"`

	// JournalSize caps how many roster changes are kept for /stats.
	JournalSize int `koanf:"journal_size"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// ServiceName is reported as the tracing resource name.
	ServiceName string `koanf:"service_name"`
}

// New creates a Config populated with defaults. The context is reserved for
// future lookups and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":8000",
		QueueSize:   1024,
		WorkerCount: runtime.NumCPU(),
		JournalSize: 50,
		ServiceName: "mergington-activities",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.JournalSize <= 0:
		return fmt.Errorf("%w: journal_size must be positive", ErrInvalidConfig)
	}
	return nil
}
