// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	Addr     string     `env:"ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Storage
	StorageType string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisKeyTTL time.Duration `env:"REDIS_KEY_TTL" envDefault:"24h"`

	// HTTP server
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"0s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Realtime
	SSEKeepalive   time.Duration `env:"SSE_KEEPALIVE" envDefault:"15s"`
	HubCleanup     time.Duration `env:"HUB_CLEANUP_INTERVAL" envDefault:"5m"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Sessions
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
}

// Load parses the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	switch cfg.StorageType {
	case StorageMemory, StorageRedis:
	default:
		return nil, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory or redis", cfg.StorageType)
	}
	if cfg.SSEKeepalive <= 0 {
		return nil, fmt.Errorf("invalid SSE_KEEPALIVE %s: must be positive", cfg.SSEKeepalive)
	}
	return &cfg, nil
}
