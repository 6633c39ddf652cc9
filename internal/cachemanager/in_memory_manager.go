package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/bloom/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// InMemoryCacheManager implements CacheManager on top of go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// NewInMemoryCacheManager creates a cache. useCase labels log lines.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the cached value for key.
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V

	raw, found := c.cache.Get(string(key))
	if !found {
		log.Debug(log.CatCache, "cache miss", "use_case", c.useCase, "key", key)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "use_case", c.useCase, "key", key)
		return zero, false
	}
	log.Debug(log.CatCache, "cache hit", "use_case", c.useCase, "key", key)
	return v, true
}

// GetWithRefresh is Get that also extends the entry's TTL on a hit.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	v, found := c.Get(ctx, key)
	if found {
		c.Set(ctx, key, v, ttl)
	}
	return v, found
}

// Set stores value under key for ttl. gocache.DefaultExpiration (0) uses
// the cache default.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes keys.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes everything.
func (c *InMemoryCacheManager[K, V]) Flush(context.Context) {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "use_case", c.useCase)
}

// Len counts entries, including expired ones not yet cleaned up.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
