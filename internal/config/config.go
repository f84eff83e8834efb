// Package config defines the configuration structures for the ChemScreen
// tool.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
)

// MinimizeConfig holds the external minimiser invocation parameters.
type MinimizeConfig struct {
	// Command is the minimiser executable; required only when minimisation
	// is requested.
	Command string `mapstructure:"command"`

	// Args are passed to the command; an occurrence of {file} is replaced
	// with the scratch file path.
	Args []string `mapstructure:"args"`

	// Timeout bounds one minimisation run.  Zero disables the deadline.
	Timeout time.Duration `mapstructure:"timeout"`

	// WorkDir hosts the scratch file; empty means the system temp dir.
	WorkDir string `mapstructure:"work_dir"`
}

// MetricsConfig holds the optional prometheus listener parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Config is the root configuration for one ChemScreen invocation.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Minimize MinimizeConfig    `mapstructure:"minimize"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// Validate checks cross-field consistency.  It assumes ApplyDefaults has
// already run.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Log.Format)
	}
	if c.Minimize.Timeout < 0 {
		return fmt.Errorf("config: minimize timeout must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics enabled but no listen address set")
	}
	return nil
}
