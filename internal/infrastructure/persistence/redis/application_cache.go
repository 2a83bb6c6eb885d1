package redis

import (
	"context"
	"errors"
	"time"

	"github.com/scholar-hub/scholar-application-hub/internal/domain/application"
	"github.com/scholar-hub/scholar-application-hub/internal/domain/shared"
)

// ApplicationCache implements application.Cache using the generic Redis Cache.
type ApplicationCache struct {
	cache *Cache
}

// NewApplicationCache creates a new ApplicationCache.
func NewApplicationCache(cache *Cache) *ApplicationCache {
	return &ApplicationCache{
		cache: cache,
	}
}

// Get returns a cached application.
func (c *ApplicationCache) Get(ctx context.Context, id string) (*application.Application, error) {
	var app application.Application
	err := c.cache.Get(ctx, ApplicationKey(id), &app)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("cache", "Get", shared.ErrNotFound,
				"application not cached", err)
		}
		return nil, err
	}
	return &app, nil
}

// Set caches an application with a TTL.
func (c *ApplicationCache) Set(ctx context.Context, app *application.Application, ttl time.Duration) error {
	if app == nil {
		return nil
	}
	return c.cache.Set(ctx, ApplicationKey(app.ID), app, ttl)
}

// GetStats returns cached stats for an owner.
func (c *ApplicationCache) GetStats(ctx context.Context, ownerID string) (*application.Stats, error) {
	var stats application.Stats
	err := c.cache.Get(ctx, StatsKey(ownerID), &stats)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("cache", "GetStats", shared.ErrNotFound,
				"stats not cached", err)
		}
		return nil, err
	}
	return &stats, nil
}

// SetStats caches an owner's stats with a TTL.
func (c *ApplicationCache) SetStats(ctx context.Context, ownerID string, stats *application.Stats, ttl time.Duration) error {
	if stats == nil {
		return nil
	}
	return c.cache.Set(ctx, StatsKey(ownerID), stats, ttl)
}

// Invalidate drops the cached application and the owner's derived entries.
func (c *ApplicationCache) Invalidate(ctx context.Context, id, ownerID string) error {
	return c.cache.Delete(ctx,
		ApplicationKey(id),
		StatsKey(ownerID),
		UrgentKey(ownerID),
	)
}
