// Package metrics exposes the Prometheus metrics of the HepatoDB client.
// Metrics are defined next to the code that updates them (client, cache,
// ratelimit, pagination, screen) and registered via promauto; this package
// serves them.
//
// Request metrics (pkg/client):
//   - hepato_requests_total{endpoint, status}
//   - hepato_request_duration_seconds{endpoint}
//   - hepato_errors_total{class}
//   - hepato_retries_total{error_class}
//   - hepato_retry_backoff_seconds{error_class}
//   - hepato_retry_exhausted_total{error_class}
//
// Cache metrics (pkg/cache):
//   - hepato_cache_hits_total{layer}
//   - hepato_cache_misses_total
//   - hepato_cache_size_bytes{layer}
//   - hepato_304_responses_total
//   - hepato_conditional_requests_total
//   - hepato_cache_errors_total{operation}
//
// Rate limit metrics (pkg/ratelimit):
//   - hepato_rate_limit_remaining
//   - hepato_rate_limit_blocks_total
//   - hepato_rate_limit_throttles_total
//
// Collection metrics (pkg/pagination, pkg/screen):
//   - hepato_pages_fetched_total{resource}
//   - hepato_collect_duration_seconds{resource, outcome}
//   - hepato_screen_searches_total{resource, outcome}
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(hepato_cache_hits_total[5m])) /
//	(sum(rate(hepato_cache_hits_total[5m])) + sum(rate(hepato_cache_misses_total[5m])))
//
//	# Failed collections per resource
//	sum by (resource) (rate(hepato_collect_duration_seconds_count{outcome="error"}[5m]))
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's promauto metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer for Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}
