package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/catalog"
)

// DefaultProductCachePrefix namespaces cached listings in Redis
const DefaultProductCachePrefix = "storefront:products:"

// RedisProductCache stores serialized product listings in Redis
type RedisProductCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisProductCache creates a listing cache over client
func NewRedisProductCache(client redis.UniversalClient, prefix string) *RedisProductCache {
	if prefix == "" {
		prefix = DefaultProductCachePrefix
	}
	return &RedisProductCache{client: client, prefix: prefix}
}

// Get returns (nil, nil) on a miss
func (c *RedisProductCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product cache get: %w", err)
	}
	return data, nil
}

// Set stores a listing for ttl
func (c *RedisProductCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("product cache set: %w", err)
	}
	return nil
}

// InvalidateAll scans the prefix and deletes every cached listing
func (c *RedisProductCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("product cache invalidate: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("product cache scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("product cache invalidate: %w", err)
		}
	}
	return nil
}

// InMemoryProductCache keeps listings in process memory
type InMemoryProductCache struct {
	store *memStore
}

// NewInMemoryProductCache creates the cache and starts its sweeper
func NewInMemoryProductCache() *InMemoryProductCache {
	return &InMemoryProductCache{store: newMemStore(time.Minute)}
}

// Get returns (nil, nil) on a miss
func (c *InMemoryProductCache) Get(_ context.Context, key string) ([]byte, error) {
	data, _ := c.store.get(key)
	return data, nil
}

// Set stores a listing for ttl
func (c *InMemoryProductCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.store.set(key, data, ttl)
	return nil
}

// InvalidateAll drops every listing
func (c *InMemoryProductCache) InvalidateAll(context.Context) error {
	c.store.clear()
	return nil
}

// Close stops the sweeper
func (c *InMemoryProductCache) Close() error {
	c.store.close()
	return nil
}

var (
	_ catalog.ProductCache = (*RedisProductCache)(nil)
	_ catalog.ProductCache = (*InMemoryProductCache)(nil)
)
