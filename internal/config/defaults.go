package config

import "time"

// Default value constants.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMinimizeTimeout = 10 * time.Minute

	DefaultMetricsAddr = ":9100"
)

// ApplyDefaults fills every zero-value field in cfg with the tool default.
// Fields that have already been set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	if cfg.Minimize.Timeout == 0 {
		cfg.Minimize.Timeout = DefaultMinimizeTimeout
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
}
