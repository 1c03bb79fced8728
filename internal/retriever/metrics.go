package retriever

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts retrieval requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "retriever",
			Name:      "requests_total",
			Help:      "Total retrieval requests by outcome (success, empty, unavailable).",
		},
		[]string{"result"},
	)

	// RetrieveDuration tracks end-to-end retrieval latency.
	RetrieveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tutord",
			Subsystem: "retriever",
			Name:      "retrieve_duration_seconds",
			Help:      "Retrieval latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ChunksReturned tracks how many chunks clear the similarity threshold.
	ChunksReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tutord",
			Subsystem: "retriever",
			Name:      "chunks_returned",
			Help:      "Number of chunks returned per successful retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
)
