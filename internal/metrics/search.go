package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rawi",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by requested mode and outcome",
		},
		[]string{"mode", "status"},
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rawi",
			Name:      "search_fallbacks_total",
			Help:      "Mode downgrades performed because a dependency was unavailable",
		},
		[]string{"from", "to"},
	)

	SearchBackendRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rawi",
			Name:      "search_backend_retries_total",
			Help:      "Backend transport retries issued by the search engine",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(SearchBackendRetriesTotal)
	searchMetricsRegistered = true
}
