package repository

import (
	"context"
	"testing"
	"time"

	"lendhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySearchCacheSetGet(t *testing.T) {
	cache := NewMemorySearchCache(time.Minute)
	ctx := context.Background()

	items := []models.Item{{ID: 1, Name: "Drill"}}
	require.NoError(t, cache.Set(ctx, "drill", items))

	got, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Drill", got[0].Name)

	_, ok, err = cache.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySearchCacheExpiry(t *testing.T) {
	cache := NewMemorySearchCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "drill", []models.Item{{ID: 1}}))

	time.Sleep(20 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySearchCacheInvalidate(t *testing.T) {
	cache := NewMemorySearchCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "drill", []models.Item{{ID: 1}}))
	require.NoError(t, cache.Set(ctx, "saw", []models.Item{{ID: 2}}))

	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx, "drill")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = cache.Get(ctx, "saw")
	require.NoError(t, err)
	assert.False(t, ok)
}
