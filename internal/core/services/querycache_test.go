package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestQueryCache_RoundTrip(t *testing.T) {
	store := newMockCacheStore()
	c := NewQueryCache(store, 0)
	ctx := context.Background()
	fp := domain.Fingerprint("docs", "q")

	_, ok := c.Lookup(ctx, fp)
	assert.False(t, ok)

	c.Store(ctx, fp, &domain.QueryResult{Query: "q", Answer: "a", SimilarityScore: 0.5})

	got, ok := c.Lookup(ctx, fp)
	require.True(t, ok)
	assert.Equal(t, "a", got.Answer)
	assert.Equal(t, 0.5, got.SimilarityScore)
	assert.Equal(t, domain.DefaultCacheTTL, store.ttls[fp])
}

func TestQueryCache_SkipsEmptyAnswer(t *testing.T) {
	store := newMockCacheStore()
	c := NewQueryCache(store, time.Minute)

	c.Store(context.Background(), "k", &domain.QueryResult{Answer: ""})

	assert.Empty(t, store.values)
}

func TestQueryCache_Degrades(t *testing.T) {
	store := newMockCacheStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	store.pingErr = errors.New("connection refused")
	c := NewQueryCache(store, time.Minute)
	ctx := context.Background()

	c.Store(ctx, "k", &domain.QueryResult{Answer: "a"})
	_, ok := c.Lookup(ctx, "k")

	assert.False(t, ok)
	assert.False(t, c.Ping(ctx))
}

func TestQueryCache_CorruptPayload(t *testing.T) {
	store := newMockCacheStore()
	store.values["k"] = "{not json"
	c := NewQueryCache(store, time.Minute)

	_, ok := c.Lookup(context.Background(), "k")

	assert.False(t, ok)
}

func TestQueryCache_Disabled(t *testing.T) {
	c := NewQueryCache(nil, 0)
	ctx := context.Background()

	c.Store(ctx, "k", &domain.QueryResult{Answer: "a"})
	_, ok := c.Lookup(ctx, "k")

	assert.False(t, ok)
	assert.False(t, c.Enabled())
	assert.False(t, c.Ping(ctx))
}
