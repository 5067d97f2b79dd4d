package redis

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestNewCacheStore(t *testing.T) {
	store, err := NewCacheStore("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", store.Addr())
	assert.NoError(t, store.Close())

	store, err = NewCacheStore("redis://cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", store.Addr())
	assert.NoError(t, store.Close())

	_, err = NewCacheStore("http://not-redis")
	assert.Error(t, err)
}

func TestPing_Unreachable(t *testing.T) {
	// Reserve a port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	store, err := NewCacheStore("redis://" + addr)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, store.Ping(ctx), domain.ErrCacheUnavailable)
}

func TestSetWithExpiry_RejectsNonPositiveTTL(t *testing.T) {
	store, err := NewCacheStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.SetWithExpiry(context.Background(), "k", "v", 0))
}

// Integration test - only runs when REDIS_URL points at a live server.
func TestCacheStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}

	store, err := NewCacheStore(url)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	key := "pagelens-test:" + uuid.NewString()
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetWithExpiry(ctx, key, "answer", time.Second))
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "answer", value)

	assert.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, key)
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}
