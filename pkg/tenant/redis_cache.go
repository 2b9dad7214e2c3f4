package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

const defaultRedisPrefix = "tenant:subdomain:"

// RedisClient is the subset of go-redis used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache shares directory records between service instances, so a
// suspension is visible to every instance as soon as the entry is deleted.
type RedisCache struct {
	client RedisClient
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a Redis-backed cache. An empty prefix selects the default.
func NewRedisCache(client RedisClient, prefix string, log *slog.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisCache{client: client, prefix: prefix, logger: log}
}

// Get treats every Redis failure as a miss; the directory is the source of truth.
func (c *RedisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "tenant cache read failed", logger.Subdomain(key), logger.Error(err))
		}
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry is corrupt", logger.Subdomain(key), logger.Error(err))
		c.Delete(ctx, key)
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	if tenant == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache write failed", logger.Subdomain(key), logger.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache delete failed", logger.Subdomain(key), logger.Error(err))
	}
}

// Close is a no-op; the client is owned by the caller.
func (c *RedisCache) Close() error { return nil }
