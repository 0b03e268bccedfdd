package repository

import (
	"context"
	"sync"
	"time"

	"lendhub/internal/models"
)

type memoryEntry struct {
	items     []models.Item
	expiresAt time.Time
}

// MemorySearchCache is the in-process fallback for the search cache.
type MemorySearchCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemorySearchCache(ttl time.Duration) *MemorySearchCache {
	return &MemorySearchCache{
		ttl: ttl,
	}
}

func (r *MemorySearchCache) Get(ctx context.Context, query string) ([]models.Item, bool, error) {
	val, ok := r.entries.Load(query)
	if !ok {
		return nil, false, nil
	}

	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(query)
		return nil, false, nil
	}

	return entry.items, true, nil
}

func (r *MemorySearchCache) Set(ctx context.Context, query string, items []models.Item) error {
	r.entries.Store(query, &memoryEntry{
		items:     items,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemorySearchCache) Invalidate(ctx context.Context) error {
	r.entries.Range(func(key, _ any) bool {
		r.entries.Delete(key)
		return true
	})
	return nil
}
