package service

import (
	"context"
	"time"

	"shortlink/internal/cache"
	"shortlink/pkg/logger"
)

// cacheAside wraps the optional cache. Transport failures are logged and
// reported as misses; writes are best-effort.
type cacheAside struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *logger.Logger
}

func (c *cacheAside) get(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}

	val, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warnw("Cache read failed, falling back to store", "key", key, "error", err)
		return "", false
	}
	if found {
		c.logger.Debugw("Cache hit", "key", key)
	}
	return val, found
}

func (c *cacheAside) set(ctx context.Context, key, value string) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warnw("Failed to update cache", "key", key, "error", err)
	}
}
