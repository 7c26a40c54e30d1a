package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hepato_pages_fetched_total",
		Help: "Total pages fetched by resource",
	}, []string{"resource"})

	collectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hepato_collect_duration_seconds",
		Help:    "Duration of full collection runs by resource and outcome",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resource", "outcome"})
)
