// Package redis provides a query cache backed by a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// DefaultURL is used when no URL is configured.
const DefaultURL = "redis://localhost:6379/0"

// CacheStore keeps entries in Redis with SET ... EX so the server owns expiry.
type CacheStore struct {
	client *goredis.Client
	url    string
}

// NewCacheStore parses url (redis:// or rediss://) and creates a client.
// No connection is made until the first command; call Ping to validate.
func NewCacheStore(url string) (*CacheStore, error) {
	if url == "" {
		url = DefaultURL
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &CacheStore{client: goredis.NewClient(opts), url: url}, nil
}

// Addr returns the server address the client connects to.
func (s *CacheStore) Addr() string {
	return s.client.Options().Addr
}

// Get returns the value for key. A missing key is not an error.
func (s *CacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// SetWithExpiry stores value under key for ttl.
func (s *CacheStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping validates the server is reachable. Failures match domain.ErrCacheUnavailable.
func (s *CacheStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping %s: %v", domain.ErrCacheUnavailable, s.Addr(), err)
	}
	return nil
}

// Close closes the client connection pool.
func (s *CacheStore) Close() error {
	return s.client.Close()
}
