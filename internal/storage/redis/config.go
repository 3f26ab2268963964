package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types. Zero disables expiry.
	PlayerTTL time.Duration
	InviteTTL time.Duration
	GameTTL   time.Duration // Applied to the game record and its move list
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    48 * time.Hour,
		InviteTTL:    48 * time.Hour,
		GameTTL:      48 * time.Hour,
	}
}
