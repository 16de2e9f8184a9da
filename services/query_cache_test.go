package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheSetGet(t *testing.T) {
	cache := NewQueryCache(1 * time.Minute)
	defer cache.Close()

	cache.Set("standings_abc", []string{"row1", "row2"})

	got, ok := cache.Get("standings_abc")
	require.True(t, ok)
	assert.Equal(t, []string{"row1", "row2"}, got)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestQueryCacheExpiry(t *testing.T) {
	cache := NewQueryCache(20 * time.Millisecond)
	defer cache.Close()

	cache.Set("k", "v")
	_, ok := cache.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok, "entry must expire after the TTL")
}

func TestQueryCacheClear(t *testing.T) {
	cache := NewQueryCache(1 * time.Minute)
	defer cache.Close()

	cache.Set("a", 1)
	cache.Set("b", 2)
	require.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestQueryCacheDelete(t *testing.T) {
	cache := NewQueryCache(1 * time.Minute)
	defer cache.Close()

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Delete("a")

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
}

func TestCacheKeyStable(t *testing.T) {
	k1 := CacheKey("standings", []string{"league-1", "2024"})
	k2 := CacheKey("standings", []string{"league-1", "2024"})
	k3 := CacheKey("standings", []string{"league-1", "2023"})

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "standings_")
}
