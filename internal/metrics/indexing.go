package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing pipeline Prometheus metrics.
var (
	IndexingDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rawi",
			Name:      "indexing_documents_total",
			Help:      "Documents handled by the indexing pipeline by outcome",
		},
		[]string{"status"}, // "processed"/"failed"
	)

	IndexingPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rawi",
			Name:      "indexing_pages_total",
			Help:      "Pages handled by the indexing pipeline by outcome",
		},
		[]string{"status"}, // "ok"/"failed"
	)

	IndexingRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rawi",
			Name:      "indexing_run_duration_seconds",
			Help:      "End-to-end indexing run duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexingDocumentsTotal)
	prometheus.MustRegister(IndexingPagesTotal)
	prometheus.MustRegister(IndexingRunDuration)
	indexingMetricsRegistered = true
}
