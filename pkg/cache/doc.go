// Package cache keeps HepatoDB responses in a two-layer cache: a per-process
// memory layer in front of an optional shared Redis layer.
//
// Reference lists (unique-values) and paged collection responses change
// rarely, so repeating a search re-walks every page but most pages come back
// from cache or as 304 Not Modified.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, 60*time.Second) // redisClient may be nil
//
//	key := cache.CacheKey{
//		Endpoint:    "/protein-interaction",
//		QueryParams: url.Values{"disease": {"NAFLD"}, "page": {"1"}, "limit": {"10"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry, _ = cache.ResponseToEntry(resp)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Freshness
//
// Entry lifetime comes from Cache-Control max-age, then Expires, then
// DefaultTTL. Responses marked no-store are never cached. Entries carrying an
// ETag or Last-Modified are revalidated with If-None-Match / If-Modified-Since.
//
// # Metrics
//
//   - hepato_cache_hits_total{layer} - hits by layer (memory, redis)
//   - hepato_cache_misses_total - misses
//   - hepato_cache_size_bytes{layer} - bytes written per layer
//   - hepato_304_responses_total - revalidations answered with 304
//   - hepato_conditional_requests_total - conditional requests sent
//   - hepato_cache_errors_total{operation} - Redis failures
package cache
