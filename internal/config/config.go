// Package config loads application settings from defaults, an optional YAML
// file, and FISHLOG_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone database for weather.timezone on hosts without one

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before mapping them to
// config keys: FISHLOG_USGS_STATION -> usgs.station
const EnvPrefix = "FISHLOG_"

// PathEnvVar overrides the config file location
const PathEnvVar = "FISHLOG_CONFIG"

// Config holds all application settings.
type Config struct {
	// ShowErrors surfaces fetch warnings inline. When false they are only logged.
	ShowErrors bool `koanf:"show_errors"`

	USGS      USGSConfig      `koanf:"usgs"`
	Weather   WeatherConfig   `koanf:"weather"`
	HTTP      HTTPConfig      `koanf:"http"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Locations LocationsConfig `koanf:"locations"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type USGSConfig struct {
	BaseURL           string  `koanf:"base_url"`
	Station           string  `koanf:"station"`
	LookbackDays      int     `koanf:"lookback_days"`
	DefaultGageHeight float64 `koanf:"default_gage_height"` // feet, used when the gage fetch fails
}

type WeatherConfig struct {
	BaseURL  string `koanf:"base_url"`
	Timezone string `koanf:"timezone"`
}

type HTTPConfig struct {
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
}

// BreakerConfig controls the per-upstream circuit breaker
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

type LocationsConfig struct {
	DSN       string `koanf:"dsn"`
	Seed      bool   `koanf:"seed"`
	Shapefile string `koanf:"shapefile"` // optional point shapefile imported at startup
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"` // empty disables the /metrics listener
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		ShowErrors: true,
		USGS: USGSConfig{
			BaseURL:           "https://waterservices.usgs.gov/nwis/iv/",
			Station:           "05427850", // Yahara River at State Hwy 113, Madison WI
			LookbackDays:      7,
			DefaultGageHeight: 8.0,
		},
		Weather: WeatherConfig{
			BaseURL:  "https://api.open-meteo.com/v1/forecast",
			Timezone: "America/Chicago",
		},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			RatePerSecond: 2,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			OpenTimeout:      30 * time.Second,
		},
		Locations: LocationsConfig{
			DSN:  ":memory:",
			Seed: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   "fishing-log.log",
		},
	}
}

// Load layers defaults, the YAML file at path (or $FISHLOG_CONFIG, if set),
// and environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sections whose keys contain underscores after the section name
var sections = []string{"usgs", "weather", "http", "breaker", "locations", "log", "metrics"}

// envTransform maps FISHLOG_USGS_LOOKBACK_DAYS to usgs.lookback_days
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

// Validate rejects settings the fetchers cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.USGS.Station == "" {
		errs = append(errs, errors.New("usgs.station is required"))
	}
	if c.USGS.LookbackDays < 1 {
		errs = append(errs, errors.New("usgs.lookback_days must be at least 1"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.RatePerSecond <= 0 {
		errs = append(errs, errors.New("http.rate_per_second must be positive"))
	}
	if c.Breaker.FailureThreshold == 0 {
		errs = append(errs, errors.New("breaker.failure_threshold must be positive"))
	}
	if c.Weather.Timezone != "" {
		if _, err := time.LoadLocation(c.Weather.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("weather.timezone: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
