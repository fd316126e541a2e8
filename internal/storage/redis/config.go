package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxTxRetries bounds optimistic transaction retries when a watched key changes
	MaxTxRetries int

	// TTL settings for different entity types
	GuestPlayerTTL time.Duration
	GameTTL        time.Duration // Applies to the game, its messages and its join code
	DailyWordTTL   time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		MaxTxRetries:   5,
		GuestPlayerTTL: 24 * time.Hour,
		GameTTL:        72 * time.Hour,
		DailyWordTTL:   72 * time.Hour,
	}
}
