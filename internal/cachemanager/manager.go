// Package cachemanager provides a small typed cache layer over go-cache and
// a read-through helper. The Zen server caches leaderboards with it.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed TTL cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Len() int
}
