package cache

import (
	"context"
	"fmt"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/observability"
)

// Namespace prefixes every key this service writes to a shared store.
const Namespace = "postboard:"

// IndexPagePrefix is the key prefix of cached global feed pages.
const IndexPagePrefix = "index_page:"

// Store is a byte cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear removes every entry whose key starts with prefix.
	Clear(ctx context.Context, prefix string) error
}

// IndexPageKey is the cache key of one global feed page.
func IndexPageKey(page int) string {
	return fmt.Sprintf("%s%d", IndexPagePrefix, page)
}

// Aside returns the cached bytes for key or computes, stores and returns
// them. A stored value is served verbatim until window elapses. Store
// failures are logged and never fail the call.
func Aside(ctx context.Context, store Store, key string, window time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if store != nil {
		b, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			observability.FeedCacheLookups.WithLabelValues(observability.CacheError).Inc()
			middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		case ok:
			observability.FeedCacheLookups.WithLabelValues(observability.CacheHit).Inc()
			return b, nil
		default:
			observability.FeedCacheLookups.WithLabelValues(observability.CacheMiss).Inc()
		}
	}

	b, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Set(ctx, key, b, window); err != nil {
			observability.FeedCacheLookups.WithLabelValues(observability.CacheError).Inc()
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return b, nil
}

// ClearIndex drops every cached global feed page.
func ClearIndex(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	return store.Clear(ctx, IndexPagePrefix)
}
