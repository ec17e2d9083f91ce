// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultAddr           = ":9080"
	DefaultSource         = "data/sports_data.csv"
	DefaultTopN           = 5
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxSessions    = 1000
	DefaultSessionTTLMins = 60
	DefaultChartWidthPx   = 640
	DefaultChartHeightPx  = 400
	DefaultChartBarPx     = 28
	DefaultMetricsRefresh = 10
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultSource is the dataset path used by sessions without an upload.
	DefaultSource string `koanf:"default_source"`

	// TopN is the size of the top performers view.
	TopN int `koanf:"top_n"`

	// MaxUploadBytes caps POST /datasets bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxSessions bounds the in-memory session cache.
	MaxSessions int `koanf:"max_sessions"`

	// SessionTTLMinutes is the idle time after which a session expires.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// ChartWidthPx and ChartHeightPx size rendered chart images.
	ChartWidthPx  int `koanf:"chart_width_px"`
	ChartHeightPx int `koanf:"chart_height_px"`

	// ChartBarWidthPx is the bar width in rendered charts.
	ChartBarWidthPx int `koanf:"chart_bar_width_px"`

	// MaxRows caps the data rows read from one source. Zero means unlimited.
	MaxRows int `koanf:"max_rows"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig names and labels the exported metrics.
type MetricsConfig struct {
	Enabled        bool              `koanf:"enabled"`
	Namespace      string            `koanf:"namespace"`
	Subsystem      string            `koanf:"subsystem"`
	Prefix         string            `koanf:"prefix"`
	Labels         map[string]string `koanf:"labels"`
	BucketsMs      []float64         `koanf:"buckets_ms"`
	RefreshSeconds int               `koanf:"refresh_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		Addr:              DefaultAddr,
		DefaultSource:     DefaultSource,
		TopN:              DefaultTopN,
		MaxUploadBytes:    DefaultMaxUploadBytes,
		MaxSessions:       DefaultMaxSessions,
		SessionTTLMinutes: DefaultSessionTTLMins,
		ChartWidthPx:      DefaultChartWidthPx,
		ChartHeightPx:     DefaultChartHeightPx,
		ChartBarWidthPx:   DefaultChartBarPx,
		Metrics: MetricsConfig{
			Enabled:        true,
			Namespace:      "statboard",
			Subsystem:      "dashboard",
			RefreshSeconds: DefaultMetricsRefresh,
		},
	}
}

// SessionTTL returns the idle session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MetricsRefresh returns how often metric gauges are refreshed.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.Metrics.RefreshSeconds) * time.Second
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch {
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive, got %d", ErrInvalidConfig, c.MaxUploadBytes)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive, got %d", ErrInvalidConfig, c.MaxSessions)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive, got %d", ErrInvalidConfig, c.SessionTTLMinutes)
	case c.ChartWidthPx <= 0 || c.ChartHeightPx <= 0:
		return fmt.Errorf("%w: chart dimensions must be positive, got %dx%d", ErrInvalidConfig, c.ChartWidthPx, c.ChartHeightPx)
	case c.ChartBarWidthPx <= 0:
		return fmt.Errorf("%w: chart_bar_width_px must be positive, got %d", ErrInvalidConfig, c.ChartBarWidthPx)
	case c.MaxRows < 0:
		return fmt.Errorf("%w: max_rows must not be negative, got %d", ErrInvalidConfig, c.MaxRows)
	case c.Metrics.RefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics.refresh_seconds must be positive, got %d", ErrInvalidConfig, c.Metrics.RefreshSeconds)
	}
	return nil
}
