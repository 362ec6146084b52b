package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digi_pages_fetched_total",
		Help: "Total page fetches by feed and result",
	}, []string{"feed", "result"})

	detailLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digi_detail_lookups_total",
		Help: "Total detail lookups made by filtered feeds, by result",
	}, []string{"feed", "result"})
)
