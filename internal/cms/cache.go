// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache used by the public content routes.
// Implementations are best-effort: a miss and a backend failure look the
// same to the caller.
type Cache interface {
	// Get returns the cached payload and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores the payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)

	// Delete drops the given keys.
	Delete(ctx context.Context, keys ...string)
}

// RedisCache implements [Cache] on the shared Redis client. Failures are
// logged and swallowed; the caller falls back to PostgreSQL.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache constructs a [RedisCache].
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

func (cache *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := cache.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		cache.logger.Warn("content cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return payload, true
}

func (cache *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := cache.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		cache.logger.Warn("content cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (cache *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := cache.client.Del(ctx, keys...).Err(); err != nil {
		cache.logger.Warn("content cache invalidation failed", slog.Any("error", err))
	}
}
