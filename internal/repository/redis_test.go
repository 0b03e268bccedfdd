package repository

import (
	"context"
	"testing"
	"time"

	"lendhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisSearchCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSearchCache(client, time.Minute), mr
}

func TestRedisSearchCacheSetGet(t *testing.T) {
	cache, _ := setupRedisCache(t)
	ctx := context.Background()

	items := []models.Item{{ID: 1, Name: "Drill", Available: true}}
	require.NoError(t, cache.Set(ctx, "drill", items))

	got, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Drill", got[0].Name)
}

func TestRedisSearchCacheMiss(t *testing.T) {
	cache, _ := setupRedisCache(t)

	_, ok, err := cache.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSearchCacheExpiry(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "drill", []models.Item{{ID: 1}}))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSearchCacheInvalidate(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "drill", []models.Item{{ID: 1}}))
	require.NoError(t, cache.Set(ctx, "saw", []models.Item{{ID: 2}}))

	// Keys outside the search prefix are untouched.
	require.NoError(t, mr.Set("unrelated", "value"))

	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = cache.Get(ctx, "saw")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisSearchCacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewRedisSearchCache(client, time.Minute)

	mr.Close()

	_, _, err := cache.Get(context.Background(), "drill")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "drill", nil))
}
