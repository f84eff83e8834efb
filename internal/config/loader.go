package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMSCREEN"

// newViper builds a pre-configured Viper instance: YAML file type,
// CHEMSCREEN_ env prefix, automatic env binding, and a key replacer that maps
// "." → "_" so that nested keys like "minimize.command" resolve to
// "CHEMSCREEN_MINIMIZE_COMMAND".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Register every key so Unmarshal consults the environment even when the
	// key is absent from the config file.  The zero values keep the real
	// defaulting in ApplyDefaults.
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output_paths", []string{})
	v.SetDefault("minimize.command", "")
	v.SetDefault("minimize.args", []string{})
	v.SetDefault("minimize.timeout", time.Duration(0))
	v.SetDefault("minimize.work_dir", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "")
	return v
}

// Load reads the YAML file at configPath, merges any CHEMSCREEN_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMSCREEN_* environment
// variables and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad wraps Load and panics on any error.  Intended for main(), where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
