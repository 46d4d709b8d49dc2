// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SteamBaseURL is the Web API root. Tests point it at a stub server.
	SteamBaseURL string `koanf:"steam_base_url"`

	// SteamAPIKey authenticates every upstream call. It has no default.
	SteamAPIKey string `koanf:"steam_api_key"`

	// RequestTimeoutMS bounds each individual upstream call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// FanoutLimit caps concurrent upstream calls per fan-out.
	FanoutLimit int `koanf:"fanout_limit"`

	// MinAveragePlaytimeHours is the exclusive lower bound for popular titles.
	MinAveragePlaytimeHours float64 `koanf:"min_average_playtime_hours"`

	// Language localizes achievement names.
	Language string `koanf:"language"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "json",
		Addr:                    ":9080",
		SteamBaseURL:            "https://api.steampowered.com",
		RequestTimeoutMS:        10_000,
		FanoutLimit:             16,
		MinAveragePlaytimeHours: 10,
		Language:                "english",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FanoutLimit < 1:
		return fmt.Errorf("%w: fanout_limit must be at least 1, got %d", ErrInvalidConfig, c.FanoutLimit)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive, got %d", ErrInvalidConfig, c.RequestTimeoutMS)
	case c.MinAveragePlaytimeHours < 0:
		return fmt.Errorf("%w: min_average_playtime_hours must not be negative", ErrInvalidConfig)
	case c.SteamBaseURL == "":
		return fmt.Errorf("%w: steam_base_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SteamAPIKey) == "":
		return fmt.Errorf("%w: steam_api_key must be set", ErrInvalidConfig)
	}
	return nil
}
