package runforge_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)
	ctx := context.Background()

	entry := &runforge.CacheEntry{
		Data:      []byte("cached body"),
		ExpiresAt: time.Now().Add(time.Minute),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	got, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached body"), got.Data)
	assert.True(t, cache.Has(ctx, "key1"))
}

func TestMemoryCacheMissingKey(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "missing")
	require.ErrorIs(t, err, runforge.ErrCacheKeyNotFound)
	assert.False(t, cache.Has(context.Background(), "missing"))
}

func TestMemoryCacheExpiredEntry(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)
	ctx := context.Background()

	entry := &runforge.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-time.Second),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	_, err := cache.Get(ctx, "key1")
	require.ErrorIs(t, err, runforge.ErrCacheEntryExpired)
	assert.False(t, cache.Has(ctx, "key1"))
}

func TestMemoryCacheDelete(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)
	ctx := context.Background()

	entry := &runforge.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, cache.Set(ctx, "key1", entry))
	require.NoError(t, cache.Delete(ctx, "key1"))

	_, err := cache.Get(ctx, "key1")
	require.ErrorIs(t, err, runforge.ErrCacheKeyNotFound)
}

func TestMemoryCacheClear(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)
	ctx := context.Background()

	for i := range 3 {
		entry := &runforge.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(time.Minute)}
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key%d", i), entry))
	}

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "key0"))
}

func TestMemoryCacheEviction(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(2)
	ctx := context.Background()

	// key1 expires soonest, so it is the eviction victim
	require.NoError(t, cache.Set(ctx, "key1", &runforge.CacheEntry{
		Data: []byte("a"), ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, cache.Set(ctx, "key2", &runforge.CacheEntry{
		Data: []byte("b"), ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, cache.Set(ctx, "key3", &runforge.CacheEntry{
		Data: []byte("c"), ExpiresAt: time.Now().Add(time.Hour),
	}))

	assert.False(t, cache.Has(ctx, "key1"))
	assert.True(t, cache.Has(ctx, "key2"))
	assert.True(t, cache.Has(ctx, "key3"))
}

func TestMemoryCacheCleanup(t *testing.T) {
	t.Parallel()

	cache := runforge.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "live", &runforge.CacheEntry{
		Data: []byte("a"), ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, cache.Set(ctx, "stale", &runforge.CacheEntry{
		Data: []byte("b"), ExpiresAt: time.Now().Add(-time.Minute),
	}))

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "live"))
	assert.False(t, cache.Has(ctx, "stale"))
}

func TestCacheManagerGetCacheKey(t *testing.T) {
	t.Parallel()

	manager := runforge.NewCacheManager(runforge.NewMemoryCache(10), nil)

	assert.Equal(t, "GET:/v1/scripts", manager.GetCacheKey("GET", "/v1/scripts", nil))

	// Params are sorted so the key is deterministic
	withParams := manager.GetCacheKey("GET", "/v1/scripts", map[string]string{
		"per_page": "10",
		"order_by": "name",
	})
	assert.Equal(t, "GET:/v1/scripts:order_by=name&per_page=10", withParams)
}

func TestCacheManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager := runforge.NewCacheManager(runforge.NewMemoryCache(10), &runforge.CacheOptions{TTL: time.Minute})
	ctx := context.Background()

	_, found := manager.Get(ctx, "key")
	assert.False(t, found)

	require.NoError(t, manager.Set(ctx, "key", []byte("body")))

	data, found := manager.Get(ctx, "key")
	assert.True(t, found)
	assert.Equal(t, []byte("body"), data)

	require.NoError(t, manager.Invalidate(ctx, "key"))

	_, found = manager.Get(ctx, "key")
	assert.False(t, found)
}

func TestCacheManagerNilCache(t *testing.T) {
	t.Parallel()

	manager := runforge.NewCacheManager(nil, nil)
	ctx := context.Background()

	_, found := manager.Get(ctx, "key")
	assert.False(t, found)
	require.NoError(t, manager.Set(ctx, "key", []byte("body")))
	require.NoError(t, manager.Invalidate(ctx, "key"))
}
