package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL, e.g. redis://localhost:6379/0
	URL string

	PoolSize     int
	MinIdleConns int

	// DialTimeout bounds the startup ping
	DialTimeout time.Duration

	// KeyTTL is refreshed on every write, so an idle room expires as a whole
	KeyTTL time.Duration
}

// DefaultConfig returns the settings used when only a URL is configured
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		KeyTTL:       24 * time.Hour,
	}
}
