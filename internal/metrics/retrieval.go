package metrics

import "github.com/prometheus/client_golang/prometheus"

// Corpus and retrieval Prometheus metrics.
var (
	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ctxdex",
			Name:      "corpus_documents",
			Help:      "Number of documents in the loaded corpus",
		},
	)

	CorpusLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ctxdex",
			Name:      "corpus_load_errors_total",
			Help:      "Corpus loads that degraded to an empty corpus",
		},
	)

	RetrievalMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ctxdex",
			Name:      "retrieval_mode",
			Help:      "Active retrieval mode (1 for the selected mode)",
		},
		[]string{"mode"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ctxdex",
			Name:      "search_requests_total",
			Help:      "Total number of searches by executed mode",
		},
		[]string{"mode"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ctxdex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ctxdex",
			Name:      "search_results",
			Help:      "Number of documents returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"mode"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers corpus and search metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(CorpusLoadErrorsTotal)
	prometheus.MustRegister(RetrievalMode)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	retrievalMetricsRegistered = true
}
