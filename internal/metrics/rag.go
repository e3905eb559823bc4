package metrics

import "github.com/prometheus/client_golang/prometheus"

// Orchestration pipeline metrics.
var (
	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Venues returned per retrieval after post-filtering",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		},
	)

	RetrievalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_failures_total",
			Help:      "Retrievals that degraded to an empty context",
		},
		[]string{"reason"}, // "embedding" / "index" / "timeout"
	)

	IntentClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_classifications_total",
			Help:      "Classified intents by source",
		},
		[]string{"intent", "source"}, // source: "llm" / "keyword"
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Generations served by a deterministic fallback",
		},
		[]string{"route", "reason"},
	)

	OrchestratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orchestrator_requests_total",
			Help:      "Processed user requests by response type",
		},
		[]string{"type"},
	)

	OrchestratorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orchestrator_duration_seconds",
			Help:      "End-to-end user request processing time",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"type"},
	)
)

var ragMetricsRegistered bool

// RegisterRAGMetrics registers orchestration metrics. Safe to call more than once.
func RegisterRAGMetrics() {
	if ragMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		RetrievalResults,
		RetrievalFailuresTotal,
		IntentClassificationsTotal,
		FallbacksTotal,
		OrchestratorRequestsTotal,
		OrchestratorDuration,
	)
	ragMetricsRegistered = true
}

// RegisterAll registers every metric family exported by this package.
func RegisterAll() {
	RegisterHTTPMetrics()
	RegisterEmbeddingMetrics()
	RegisterCompletionMetrics()
	RegisterRAGMetrics()
}
