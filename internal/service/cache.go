package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// listCache is a small read-through cache for public list endpoints. Keys
// embed a per-namespace version counter; writers bump the counter instead of
// enumerating keys, so stale entries simply age out via TTL.
//
// A nil client disables caching entirely, which keeps the services usable in
// tests without a Redis instance.
type listCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func newListCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) *listCache {
	return &listCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// key builds a versioned cache key for the namespace.
func (c *listCache) key(ctx context.Context, namespace, suffix string) string {
	var version int64
	if c.client != nil {
		v, err := c.client.Get(ctx, namespace+":ver").Int64()
		if err == nil {
			version = v
		}
	}
	return fmt.Sprintf("%s:v%d:%s", namespace, version, suffix)
}

// get loads a cached value into target, reporting whether it was present.
// Cache failures degrade to a miss.
func (c *listCache) get(ctx context.Context, key string, target any) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		c.logger.WarnContext(ctx, "cache entry unmarshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	return true
}

// set stores a value under the key. Failures are logged and ignored.
func (c *listCache) set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// bump invalidates the namespace by incrementing its version counter.
func (c *listCache) bump(ctx context.Context, namespace string) {
	if c.client == nil {
		return
	}

	if err := c.client.Incr(ctx, namespace+":ver").Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("namespace", namespace),
			slog.String("error", err.Error()),
		)
	}
}
