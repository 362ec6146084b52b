package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits by layer.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digi_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks lookups that found no fresh entry.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digi_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheStoredBytes tracks bytes written to the cache by layer.
	CacheStoredBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digi_cache_stored_bytes_total",
			Help: "Total bytes written to the response cache",
		},
		[]string{"layer"},
	)

	// ConditionalRequests tracks 304 Not Modified responses.
	ConditionalRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digi_304_responses_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
