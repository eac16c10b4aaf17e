// Package cache is a read-through JSON cache over Redis. A Cache built with a
// nil client loads straight from the source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	sf     singleflight.Group
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *Cache) Key(parts ...string) string {
	var key string
	if c != nil {
		key = c.prefix
	}
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Remember returns the cached value for key or loads, stores and returns it.
// Concurrent misses for the same key share one load. Redis failures degrade
// to a direct load.
func Remember[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			slog.Warn("discarding undecodable cache entry", "key", key)
		case !errors.Is(err, redis.Nil):
			slog.Warn("cache read failed", "key", key, "error", err)
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if data, err := json.Marshal(value); err == nil {
				if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
					slog.Warn("cache write failed", "key", key, "error", err)
				}
			}
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops keys. Failures are logged; the entry expires with its TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
