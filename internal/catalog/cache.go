package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:product:"

// Cache keeps product lookups in Redis as JSON.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client or non-positive TTL disables it.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func cacheKey(slug string) string {
	return cacheKeyPrefix + NormalizeSlug(slug)
}

// Get reports whether a product was cached under slug.
func (c *Cache) Get(ctx context.Context, slug string) (Product, bool, error) {
	if !c.enabled() {
		return Product{}, false, nil
	}
	data, err := c.client.Get(ctx, cacheKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Product{}, false, nil
		}
		return Product{}, false, err
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

// Set stores p with the configured TTL.
func (c *Cache) Set(ctx context.Context, p Product) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(p.Slug), data, c.ttl).Err()
}

// Invalidate drops the cached entry for slug.
func (c *Cache) Invalidate(ctx context.Context, slug string) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, cacheKey(slug)).Err()
}
