package collection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BulkFetchItems counts bulk fetch outcomes per ID ("ok", "invalid", "failed").
	BulkFetchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digi_bulk_fetch_items_total",
			Help: "Total number of items requested by bulk fetches, by result",
		},
		[]string{"result"},
	)

	// DetailCacheLookups counts detail cache lookups ("hit", "miss").
	DetailCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digi_detail_cache_total",
			Help: "Total number of per-session detail cache lookups, by result",
		},
		[]string{"result"},
	)
)
