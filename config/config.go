// Package config loads service configuration from the environment, with
// optional .env files for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Cache     CacheConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8082"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Backend     string `envconfig:"STORE_BACKEND" default:"file"` // "file" or "postgres"
	DataDir     string `envconfig:"DATA_DIR" default:"./data"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
}

// CacheConfig tunes the fetch cache.
type CacheConfig struct {
	TTL        time.Duration `envconfig:"CACHE_TTL" default:"30m"`
	MaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	Burst             float64 `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// Load reads .env.development (preferred for local development) or .env
// when present, then fills the config from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.development"); err != nil {
		// Fall back to a plain .env; absence of both is fine, the
		// environment itself is authoritative.
		godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
