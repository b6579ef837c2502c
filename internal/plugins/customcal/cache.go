// Package customcal — cache.go keeps definitions in Redis keyed by slug.
package customcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "almanac:definition:"

// DefinitionCache is a read-through cache of definitions by slug. Get
// returns (nil, nil) on a miss.
type DefinitionCache interface {
	Get(ctx context.Context, slug string) (*Definition, error)
	Set(ctx context.Context, def *Definition) error
	Invalidate(ctx context.Context, slug string) error
}

// redisCache stores definitions as JSON strings with a TTL.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a DefinitionCache on client.
func NewRedisCache(client *redis.Client, ttl time.Duration) DefinitionCache {
	return &redisCache{client: client, ttl: ttl}
}

// Get returns the cached definition, or (nil, nil) on a cache miss.
func (c *redisCache) Get(ctx context.Context, slug string) (*Definition, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached definition: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decoding cached definition: %w", err)
	}
	return &def, nil
}

// Set caches def under its slug for the configured TTL.
func (c *redisCache) Set(ctx context.Context, def *Definition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encoding definition: %w", err)
	}
	return c.client.Set(ctx, cacheKeyPrefix+def.Slug, raw, c.ttl).Err()
}

// Invalidate drops the cached definition for slug.
func (c *redisCache) Invalidate(ctx context.Context, slug string) error {
	return c.client.Del(ctx, cacheKeyPrefix+slug).Err()
}
