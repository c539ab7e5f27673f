package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.ShowErrors)
	assert.Equal(t, "05427850", cfg.USGS.Station)
	assert.Equal(t, 7, cfg.USGS.LookbackDays)
	assert.Equal(t, 8.0, cfg.USGS.DefaultGageHeight)
	assert.Equal(t, "America/Chicago", cfg.Weather.Timezone)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, uint32(3), cfg.Breaker.FailureThreshold)
	assert.Equal(t, ":memory:", cfg.Locations.DSN)
	assert.True(t, cfg.Locations.Seed)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	t.Setenv("FISHLOG_SHOW_ERRORS", "false")
	t.Setenv("FISHLOG_USGS_STATION", "05427718")
	t.Setenv("FISHLOG_USGS_LOOKBACK_DAYS", "3")
	t.Setenv("FISHLOG_HTTP_TIMEOUT", "5s")
	t.Setenv("FISHLOG_WEATHER_TIMEZONE", "America/New_York")
	t.Setenv("FISHLOG_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.ShowErrors)
	assert.Equal(t, "05427718", cfg.USGS.Station)
	assert.Equal(t, 3, cfg.USGS.LookbackDays)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "America/New_York", cfg.Weather.Timezone)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
show_errors: false
usgs:
  station: "05429500"
  default_gage_height: 6.5
locations:
  seed: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.ShowErrors)
	assert.Equal(t, "05429500", cfg.USGS.Station)
	assert.Equal(t, 6.5, cfg.USGS.DefaultGageHeight)
	assert.False(t, cfg.Locations.Seed)
	// untouched keys keep defaults
	assert.Equal(t, 7, cfg.USGS.LookbackDays)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty station", func(c *Config) { c.USGS.Station = "" }},
		{"zero lookback", func(c *Config) { c.USGS.LookbackDays = 0 }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"zero rate", func(c *Config) { c.HTTP.RatePerSecond = 0 }},
		{"zero threshold", func(c *Config) { c.Breaker.FailureThreshold = 0 }},
		{"bad timezone", func(c *Config) { c.Weather.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "usgs.lookback_days", envTransform("FISHLOG_USGS_LOOKBACK_DAYS"))
	assert.Equal(t, "show_errors", envTransform("FISHLOG_SHOW_ERRORS"))
	assert.Equal(t, "locations.dsn", envTransform("FISHLOG_LOCATIONS_DSN"))
}
