package repository

import (
	"context"
	"sync/atomic"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSearchCache serves from the primary cache while it is healthy
// and degrades to the fallback when it fails, probing the primary again
// after a cooldown.
type FailoverSearchCache struct {
	primary   domain.SearchCache
	fallback  domain.SearchCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSearchCache(primary, fallback domain.SearchCache, logger *zerolog.Logger) *FailoverSearchCache {
	return &FailoverSearchCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSearchCache) Get(ctx context.Context, query string) ([]models.Item, bool, error) {
	if !r.isDown.Load() {
		items, ok, err := r.primary.Get(ctx, query)
		if err == nil {
			return items, ok, nil
		}
		r.markDown(err)
	}

	if r.shouldRetryPrimary() {
		items, ok, err := r.primary.Get(ctx, query)
		if err == nil {
			r.isDown.Store(false)
			return items, ok, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Get(ctx, query)
}

func (r *FailoverSearchCache) Set(ctx context.Context, query string, items []models.Item) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, query, items)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, query, items)
}

func (r *FailoverSearchCache) Invalidate(ctx context.Context) error {
	// Both sides are invalidated: the fallback may hold entries written
	// during an outage.
	var primaryErr error
	if !r.isDown.Load() {
		if primaryErr = r.primary.Invalidate(ctx); primaryErr != nil {
			r.markDown(primaryErr)
		}
	}

	return r.fallback.Invalidate(ctx)
}

func (r *FailoverSearchCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary search cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSearchCache) shouldRetryPrimary() bool {
	return r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}
