package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// CacheStore is a bounded in-process cache with per-key expiry.
// The LRU evicts by size and by maxTTL; shorter per-key TTLs are checked on read.
type CacheStore struct {
	lru *expirable.LRU[string, cacheEntry]
	now func() time.Time
}

// NewCacheStore creates a cache holding at most size entries, none of them
// longer than maxTTL.
func NewCacheStore(size int, maxTTL time.Duration) *CacheStore {
	if size <= 0 {
		size = domain.DefaultCacheEntries
	}
	if maxTTL <= 0 {
		maxTTL = domain.DefaultCacheTTL
	}
	return &CacheStore{
		lru: expirable.NewLRU[string, cacheEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get returns the value for key if present and unexpired.
func (s *CacheStore) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := s.lru.Get(key)
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.lru.Remove(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// SetWithExpiry stores value under key for ttl.
func (s *CacheStore) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	s.lru.Add(key, cacheEntry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

// Len returns the number of live entries.
func (s *CacheStore) Len() int {
	return s.lru.Len()
}

// Ping always succeeds.
func (s *CacheStore) Ping(context.Context) error {
	return nil
}

// Close drops every entry.
func (s *CacheStore) Close() error {
	s.lru.Purge()
	return nil
}
