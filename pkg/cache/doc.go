// Package cache provides an optional Redis-backed response cache for the
// Digimon API client.
//
// Entries are stored as JSON under deterministic keys derived from the request
// path and query. An entry lives until its freshness lifetime ends:
//
//   - Cache-Control max-age when the response carries one
//   - otherwise the Expires header
//   - otherwise the manager's default TTL
//
// Stale entries that carry an ETag or Last-Modified value are kept for
// revalidation. The client sends If-None-Match / If-Modified-Since and, on
// 304 Not Modified, serves the stored body and extends its lifetime.
//
// # Basic Usage
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(rdb, cache.DefaultTTL)
//
//	key := cache.KeyFor("/digimon", url.Values{"page": {"0"}, "level": {"Child"}})
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
//   - digi_cache_hits_total{layer="redis"}
//   - digi_cache_misses_total
//   - digi_cache_stored_bytes_total{layer="redis"}
//   - digi_304_responses_total
//   - digi_cache_errors_total{operation}
package cache
