// Package config loads the proxy service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/Sternrassler/digi-client/internal/server"
	"github.com/Sternrassler/digi-client/pkg/browse"
	"github.com/Sternrassler/digi-client/pkg/client"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/Sternrassler/digi-client/pkg/pagination"
	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for digi-proxy.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Upstream API
	BaseURL        string        `env:"DIGI_BASE_URL"   envDefault:"https://digi-api.com/api/v1"`
	UserAgent      string        `env:"USER_AGENT"      envDefault:"digi-proxy/1.0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	RateLimit      float64       `env:"RATE_LIMIT"      envDefault:"0"`
	RateBurst      int           `env:"RATE_BURST"      envDefault:"20"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" envDefault:"32"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// RedisURL enables the response cache, e.g. redis://localhost:6379/0.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Screens
	CatalogSize     int  `env:"CATALOG_SIZE"      envDefault:"1000"`
	LevelCount      int  `env:"LEVEL_COUNT"       envDefault:"9"`
	TypeCount       int  `env:"TYPE_COUNT"        envDefault:"30"`
	LevelPageSize   int  `env:"LEVEL_PAGE_SIZE"   envDefault:"20"`
	TypePageSize    int  `env:"TYPE_PAGE_SIZE"    envDefault:"50"`
	DetailBatchSize int  `env:"DETAIL_BATCH_SIZE" envDefault:"10"`
	DetailCache     bool `env:"DETAIL_CACHE"      envDefault:"true"`

	// SessionTTL evicts sessions that were not touched for this long.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// CORSOrigins lists the front-end origins allowed to call the service.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges env tags cannot express.
func (c *Config) Validate() error {
	positive := map[string]int{
		"LEVEL_PAGE_SIZE":   c.LevelPageSize,
		"TYPE_PAGE_SIZE":    c.TypePageSize,
		"DETAIL_BATCH_SIZE": c.DetailBatchSize,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("config: %s must be > 0 (got %d)", name, v)
		}
	}

	nonNegative := map[string]int{
		"CATALOG_SIZE":    c.CatalogSize,
		"LEVEL_COUNT":     c.LevelCount,
		"TYPE_COUNT":      c.TypeCount,
		"MAX_CONCURRENCY": c.MaxConcurrency,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("config: %s must be >= 0 (got %d)", name, v)
		}
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("config: RATE_LIMIT must be >= 0 (got %g)", c.RateLimit)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	return nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Pretty = c.LogPretty
	return cfg
}

// Client returns the API client configuration. The Redis client is wired by
// the caller.
func (c *Config) Client() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.RequestTimeout
	cfg.RateLimit = c.RateLimit
	cfg.Burst = c.RateBurst
	cfg.MaxConcurrency = c.MaxConcurrency
	cfg.CacheTTL = c.CacheTTL
	return cfg
}

// Server returns the HTTP server configuration.
func (c *Config) Server() server.Config {
	return server.Config{
		Addr:           ":" + c.Port,
		SessionTTL:     c.SessionTTL,
		AllowedOrigins: c.CORSOrigins,
	}
}

// Browse returns the screen options.
func (c *Config) Browse() browse.Options {
	return browse.Options{
		CatalogSize: c.CatalogSize,
		LevelCount:  c.LevelCount,
		TypeCount:   c.TypeCount,
		LevelFeed: pagination.Config{
			PageSize:  c.LevelPageSize,
			BatchSize: c.DetailBatchSize,
			Timeout:   c.RequestTimeout,
		},
		TypeFeed: pagination.Config{
			PageSize:  c.TypePageSize,
			BatchSize: c.DetailBatchSize,
			Timeout:   c.RequestTimeout,
		},
		DetailCache: c.DetailCache,
	}
}
