// Package metrics exposes the Prometheus registry used by digi-client.
// Metrics are defined with promauto next to the code that records them
// (client, cache, ratelimit, collection, pagination); this package serves them
// and documents the full set.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the default gatherer in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - digi_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status, "cached" or "rate_limited"
//   - digi_request_duration_seconds{endpoint} (Histogram): request duration
//   - digi_errors_total{class} (Counter): errors by class (client, server, rate_limit, network, decode)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - digi_rate_limit_blocks_total (Counter): requests refused during a 429 cool-down
//   - digi_rate_limit_throttles_total (Counter): requests delayed by client-side pacing
//   - digi_rate_limit_cooldowns_total (Counter): cool-downs started by 429 responses
//
// Cache Metrics (pkg/cache):
//   - digi_cache_hits_total{layer="redis"} (Counter)
//   - digi_cache_misses_total (Counter)
//   - digi_cache_stored_bytes_total{layer="redis"} (Counter)
//   - digi_304_responses_total (Counter)
//   - digi_cache_errors_total{operation} (Counter)
//
// Collection Metrics (pkg/collection):
//   - digi_bulk_fetch_items_total{result} (Counter): bulk slots by result (ok, invalid, failed)
//   - digi_detail_cache_total{result} (Counter): session detail cache lookups (hit, miss)
//
// Pagination Metrics (pkg/pagination):
//   - digi_pages_fetched_total{feed, result} (Counter): pages by result (ok, empty, error, discarded)
//   - digi_detail_lookups_total{feed, result} (Counter): filter lookups by result (match, miss, error)
//
// Example Prometheus Queries:
//
//   # Type filter hit rate
//   sum(rate(digi_detail_lookups_total{result="match"}[5m])) /
//   sum(rate(digi_detail_lookups_total[5m]))
//
//   # Catalog slots lost to failures
//   rate(digi_bulk_fetch_items_total{result="failed"}[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(digi_request_duration_seconds_bucket[5m]))
