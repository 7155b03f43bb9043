package metrics

import "github.com/prometheus/client_golang/prometheus"

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Vector store metrics: ingestion, search and index lifecycle.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_records_total",
			Help:      "Records written through pipelined HSET batches",
		},
		[]string{"index"},
	)

	IngestFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_flushes_total",
			Help:      "Pipelined batch flushes",
		},
		[]string{"index", "status"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Similarity searches by query kind",
		},
		[]string{"index", "kind", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "FT.SEARCH round trip duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"index", "kind"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Hits returned per search",
			Buckets:   []float64{0, 1, 4, 10, 25, 50, 100},
		},
		[]string{"index", "kind"},
	)

	IndexOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_operations_total",
			Help:      "Index lifecycle operations (create, drop)",
		},
		[]string{"operation", "result"},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers ingestion, search and index metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestRecordsTotal)
	prometheus.MustRegister(IngestFlushesTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(IndexOperationsTotal)
	storeMetricsRegistered = true
}
