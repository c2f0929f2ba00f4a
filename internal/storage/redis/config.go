package redis

import (
	"time"

	"github.com/mcoot/cutgame/internal/storage"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomCodeTTL bounds a reservation if the server dies without releasing it
	RoomCodeTTL time.Duration

	// HistoryTTL is refreshed on every saved round
	HistoryTTL   time.Duration
	HistoryLimit int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomCodeTTL:  24 * time.Hour,
		HistoryTTL:   24 * time.Hour,
		HistoryLimit: storage.DefaultHistoryLimit,
	}
}
