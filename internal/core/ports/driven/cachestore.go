package driven

import (
	"context"
	"time"
)

// CacheStore is a key-value store with per-key expiry used for query answers.
// Implementations own storage and eviction; the core owns keys and TTLs.
type CacheStore interface {
	// Get returns the value for key. ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetWithExpiry stores value under key for ttl.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
