package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lendhub/internal/config"
	"lendhub/internal/models"

	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "item_search:"

// RedisSearchCache keeps item search results in Redis with a TTL.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSearchCache(client *redis.Client, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisSearchCache) Get(ctx context.Context, query string) ([]models.Item, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, searchKeyPrefix+query).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get search results from redis: %w", err)
	}

	var items []models.Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal search results: %w", err)
	}

	return items, true, nil
}

func (r *RedisSearchCache) Set(ctx context.Context, query string, items []models.Item) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	if err := r.client.Set(ctx, searchKeyPrefix+query, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search results in redis: %w", err)
	}

	return nil
}

// Invalidate drops all cached search results. Called whenever the catalog
// changes; wholesale invalidation keeps the cache trivially correct.
func (r *RedisSearchCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	iter := r.client.Scan(ctx, 0, searchKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete search key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan search keys: %w", err)
	}

	return nil
}
