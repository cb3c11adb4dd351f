// Package cache stores provider usage statistics in Redis so that repeated
// dashboard reads do not hit the provider.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL applies when the configured TTL is not positive.
	DefaultTTL = time.Minute

	keyPrefix = "customer360:lusha:usage:"
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// UsageCache keeps the last usage snapshot per credential.
type UsageCache struct {
	rdb redisKV
	ttl time.Duration
}

// NewUsageCache creates a usage cache backed by Redis.
func NewUsageCache(rdb *redis.Client, ttl time.Duration) *UsageCache {
	return newUsageCache(rdb, ttl)
}

func newUsageCache(rdb redisKV, ttl time.Duration) *UsageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UsageCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot for credential. The boolean is false on a miss.
func (c *UsageCache) Get(ctx context.Context, credential string) (map[string]any, bool, error) {
	raw, err := c.rdb.Get(ctx, key(credential)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("usage cache GET: %w", err)
	}

	var stats map[string]any
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("decode cached usage: %w", err)
	}
	return stats, true, nil
}

// Set stores stats for credential until the TTL expires.
func (c *UsageCache) Set(ctx context.Context, credential string, stats map[string]any) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	if err := c.rdb.Set(ctx, key(credential), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("usage cache SET: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot for credential.
func (c *UsageCache) Invalidate(ctx context.Context, credential string) error {
	if err := c.rdb.Del(ctx, key(credential)).Err(); err != nil {
		return fmt.Errorf("usage cache DEL: %w", err)
	}
	return nil
}

// key never embeds the raw credential.
func key(credential string) string {
	return keyPrefix + Fingerprint(credential)
}
