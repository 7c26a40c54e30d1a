package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hepato_cache_hits_total",
			Help: "Total number of HepatoDB cache hits",
		},
		[]string{"layer"}, // "memory", "redis"
	)

	// CacheMisses tracks misses across both layers
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hepato_cache_misses_total",
			Help: "Total number of HepatoDB cache misses",
		},
	)

	// CacheSize tracks bytes written by layer
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hepato_cache_size_bytes",
			Help: "Bytes written to the HepatoDB cache by layer",
		},
		[]string{"layer"},
	)

	// NotModifiedResponses tracks revalidations answered with 304
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hepato_304_responses_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)

	// ConditionalRequestsSent tracks requests sent with validators
	ConditionalRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hepato_conditional_requests_total",
			Help: "Total number of conditional requests sent",
		},
	)

	// CacheErrors tracks Redis operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hepato_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
