package cachemanager

import (
	"context"
	"time"
)

// Loader fetches the value for input on a cache miss.
type Loader[V any, I any] func(ctx context.Context, input I) (V, error)

// ReadThroughCache serves from cache and falls back to a loader, storing
// successful loads. Errors are never cached.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache    CacheManager[K, V]
	load     Loader[V, I]
	skip     bool
	onLookup func(hit bool)
}

// ReadThroughOption configures a ReadThroughCache.
type ReadThroughOption[K ~string, V any, I any] func(*ReadThroughCache[K, V, I])

// WithLookupHook is called with the hit/miss result of every lookup.
func WithLookupHook[K ~string, V any, I any](fn func(hit bool)) ReadThroughOption[K, V, I] {
	return func(r *ReadThroughCache[K, V, I]) { r.onLookup = fn }
}

// NewReadThroughCache wraps cache with load. When skip is true every call
// goes straight to the loader.
func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	load Loader[V, I],
	skip bool,
	opts ...ReadThroughOption[K, V, I],
) *ReadThroughCache[K, V, I] {
	r := &ReadThroughCache[K, V, I]{cache: cache, load: load, skip: skip}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the cached value for key or loads it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, r.cache.Get)
}

// GetWithRefresh is Get that extends the TTL of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	})
}

// Invalidate drops cached keys so the next Get reloads them.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, keys ...K) {
	r.cache.Delete(ctx, keys...)
}

// InvalidateAll drops every cached entry.
func (r *ReadThroughCache[K, V, I]) InvalidateAll(ctx context.Context) {
	r.cache.Flush(ctx)
}

func (r *ReadThroughCache[K, V, I]) get(
	ctx context.Context, key K, input I, ttl time.Duration,
	lookup func(context.Context, K) (V, bool),
) (V, error) {
	if r.skip {
		return r.load(ctx, input)
	}

	if v, ok := lookup(ctx, key); ok {
		r.report(true)
		return v, nil
	}
	r.report(false)

	v, err := r.load(ctx, input)
	if err != nil {
		return v, err
	}
	r.cache.Set(ctx, key, v, ttl)
	return v, nil
}

func (r *ReadThroughCache[K, V, I]) report(hit bool) {
	if r.onLookup != nil {
		r.onLookup(hit)
	}
}
