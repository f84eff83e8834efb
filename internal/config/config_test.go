package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
	assert.Equal(t, DefaultMinimizeTimeout, cfg.Minimize.Timeout)
	assert.Equal(t, DefaultMetricsAddr, cfg.Metrics.Addr)
}

func TestApplyDefaults_DoesNotOverrideSetFields(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Minimize.Timeout = time.Minute
	ApplyDefaults(cfg)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Minimize.Timeout)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"negative timeout", func(c *Config) { c.Minimize.Timeout = -time.Second }, "timeout"},
		{"metrics without addr", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Addr = ""
		}, "listen address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemscreen.yaml")
	yaml := `
log:
  level: debug
  format: json
minimize:
  command: bmin
  args: ["-WAIT", "{file}"]
  timeout: 30s
metrics:
  enabled: true
  addr: ":9200"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "bmin", cfg.Minimize.Command)
	assert.Equal(t, []string{"-WAIT", "{file}"}, cfg.Minimize.Args)
	assert.Equal(t, 30*time.Second, cfg.Minimize.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9200", cfg.Metrics.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemscreen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEMSCREEN_LOG_LEVEL", "warn")
	t.Setenv("CHEMSCREEN_MINIMIZE_COMMAND", "bmin")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "bmin", cfg.Minimize.Command)
	assert.Equal(t, "console", cfg.Log.Format, "unset fields still get defaults")
}
