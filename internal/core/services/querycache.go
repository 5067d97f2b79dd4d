package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// QueryCache stores answers by fingerprint. Backend failures never fail a
// query: a failed lookup is a miss and a failed store is skipped.
type QueryCache struct {
	store driven.CacheStore
	ttl   time.Duration
}

// NewQueryCache wraps a cache store. The store is optional (can be nil), in
// which case every lookup misses.
func NewQueryCache(store driven.CacheStore, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &QueryCache{store: store, ttl: ttl}
}

// Enabled reports whether a backend is configured.
func (c *QueryCache) Enabled() bool {
	return c.store != nil
}

// Lookup returns the cached result for fp, if any.
func (c *QueryCache) Lookup(ctx context.Context, fp string) (*domain.QueryResult, bool) {
	if c.store == nil {
		return nil, false
	}

	payload, ok, err := c.store.Get(ctx, fp)
	if err != nil {
		logger.Warn("cache lookup %s: %v", fp, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var result domain.QueryResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		logger.Warn("decode cached result %s: %v", fp, err)
		return nil, false
	}
	return &result, true
}

// Store caches result under fp. Results with an empty answer are not cached.
func (c *QueryCache) Store(ctx context.Context, fp string, result *domain.QueryResult) {
	if c.store == nil || result == nil || result.Answer == "" {
		return
	}

	entry := domain.CacheEntry{Fingerprint: fp, TTL: c.ttl}
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("encode result %s: %v", fp, err)
		return
	}
	entry.Payload = string(data)

	if err := c.store.SetWithExpiry(ctx, entry.Fingerprint, entry.Payload, entry.TTL); err != nil {
		logger.Warn("cache store %s: %v", fp, err)
	}
}

// Ping reports whether the backend is reachable.
func (c *QueryCache) Ping(ctx context.Context) bool {
	if c.store == nil {
		return false
	}
	return c.store.Ping(ctx) == nil
}
