// Package config loads the Launchpad configuration from defaults, the
// launchpad.yaml file, LAUNCHPAD_ environment variables and CLI flags.
package config

import "time"

// Config holds all configuration options.
type Config struct {
	LogLevel   string           `koanf:"log_level"`
	LogFormat  string           `koanf:"log_format"`
	Output     string           `koanf:"output"`
	UI         UIConfig         `koanf:"ui"`
	State      StateConfig      `koanf:"state"`
	Simulation SimulationConfig `koanf:"simulation"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	DemoAPI    DemoAPIConfig    `koanf:"demo_api"`
	Secrets    SecretsConfig    `koanf:"secrets"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port             int    `koanf:"port"`
	SessionSecret    string `koanf:"session_secret"`
	AutoOpen         bool   `koanf:"auto_open"`
	WorkspaceName    string `koanf:"workspace_name"`
	DeploymentAlerts bool   `koanf:"deployment_alerts"`
	DailySummary     bool   `koanf:"daily_summary"`
}

// StateConfig selects the persistence backend.
type StateConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
	DSN    string `koanf:"dsn"`
	Seed   bool   `koanf:"seed"`
	Watch  bool   `koanf:"watch"`
}

// SimulationConfig holds the simulated latencies.
type SimulationConfig struct {
	TestLatency  time.Duration `koanf:"test_latency"`
	RunLatency   time.Duration `koanf:"run_latency"`
	LoginLatency time.Duration `koanf:"login_latency"`
}

// SchedulerConfig controls the in-process pipeline scheduler.
type SchedulerConfig struct {
	Enabled bool `koanf:"enabled"`
}

// DemoAPIConfig configures the landing-page demo API client.
type DemoAPIConfig struct {
	BaseURL      string        `koanf:"base_url"`
	Timeout      time.Duration `koanf:"timeout"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	ProductLimit int           `koanf:"product_limit"`
	Retries      int           `koanf:"retries"`
}

// SecretsConfig holds the credential sealing key.
type SecretsConfig struct {
	Key string `koanf:"key"`
}

// Default values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultOutput        = "text"
	DefaultPort          = 8765
	DefaultWorkspaceName = "Launchpad Inc"
	DefaultStateDriver   = "file"
	DefaultStatePath     = ".launchpad/state"
	DefaultSQLitePath    = ".launchpad/launchpad.db"
	DefaultDemoAPIURL    = "https://dummyjson.com"

	// DevSessionSecret signs cookies when ui.session_secret is unset.
	DevSessionSecret = "launchpad-dev-session-secret-change-me"
)

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":                DefaultLogLevel,
		"log_format":               DefaultLogFormat,
		"output":                   DefaultOutput,
		"ui.port":                  DefaultPort,
		"ui.session_secret":        "",
		"ui.auto_open":             false,
		"ui.workspace_name":        DefaultWorkspaceName,
		"ui.deployment_alerts":     true,
		"ui.daily_summary":         true,
		"state.driver":             DefaultStateDriver,
		"state.path":               DefaultStatePath,
		"state.dsn":                "",
		"state.seed":               true,
		"state.watch":              true,
		"simulation.test_latency":  "800ms",
		"simulation.run_latency":   "1s",
		"simulation.login_latency": "450ms",
		"scheduler.enabled":        false,
		"demo_api.base_url":        DefaultDemoAPIURL,
		"demo_api.timeout":         "10s",
		"demo_api.cache_ttl":       "5m",
		"demo_api.product_limit":   3,
		"demo_api.retries":         2,
		"secrets.key":              "",
	}
}
