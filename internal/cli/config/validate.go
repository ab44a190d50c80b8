package config

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

var (
	stateDrivers = []string{"memory", "file", "sqlite", "postgres", "mysql"}
	outputModes  = []string{"text", "json", "yaml"}
	logFormats   = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(stateDrivers, c.State.Driver) {
		return fmt.Errorf("unknown state driver %q (want one of %s)", c.State.Driver, strings.Join(stateDrivers, ", "))
	}
	if (c.State.Driver == "postgres" || c.State.Driver == "mysql") && c.State.DSN == "" {
		return fmt.Errorf("state.dsn is required for the %s state driver", c.State.Driver)
	}
	if (c.State.Driver == "file" || c.State.Driver == "sqlite") && c.State.Path == "" && c.State.DSN == "" {
		return fmt.Errorf("state.path is required for the %s state driver", c.State.Driver)
	}
	if c.UI.Port <= 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", c.UI.Port)
	}
	if !slices.Contains(outputModes, c.Output) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output, strings.Join(outputModes, ", "))
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Simulation.TestLatency < 0 || c.Simulation.RunLatency < 0 || c.Simulation.LoginLatency < 0 {
		return fmt.Errorf("simulation latencies must not be negative")
	}
	if c.DemoAPI.Retries < 0 {
		return fmt.Errorf("demo_api.retries must not be negative")
	}
	return nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds the logger described by the log settings.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SessionSecret returns the cookie signing secret and whether it is the
// built-in development value.
func (c *Config) SessionSecret() (string, bool) {
	if c.UI.SessionSecret == "" {
		return DevSessionSecret, true
	}
	return c.UI.SessionSecret, false
}
