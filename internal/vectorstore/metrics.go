// Package vectorstore provides Prometheus metrics for index monitoring.
package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsIndexed counts chunks added to the index.
	DocumentsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "vectorstore",
			Name:      "documents_indexed_total",
			Help:      "Total number of chunks added to the vector index",
		},
	)

	// SearchDuration tracks how long similarity searches take.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutord",
			Subsystem: "vectorstore",
			Name:      "search_duration_seconds",
			Help:      "Duration of similarity search operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// SearchTotal counts similarity searches by result.
	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "vectorstore",
			Name:      "searches_total",
			Help:      "Total number of similarity search operations",
		},
		[]string{"provider", "result"},
	)
)
