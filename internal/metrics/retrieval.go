package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	FusionDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lodestar",
			Name:      "fusion_degraded_total",
			Help:      "Searches served from a single retriever because the other failed",
		},
		[]string{"source"}, // surviving retriever: "semantic" / "lexical"
	)

	IngestChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestar",
			Name:      "ingest_chunks_total",
			Help:      "Total chunks successfully indexed",
		},
	)

	IngestRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lodestar",
			Name:      "ingest_rollbacks_total",
			Help:      "Ingestions rolled back after a partial failure",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval pipeline metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(FusionDegradedTotal)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(IngestRollbacksTotal)
	retrievalMetricsRegistered = true
}
