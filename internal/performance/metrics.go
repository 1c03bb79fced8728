package performance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UpsertsTotal counts successful performance record updates.
var UpsertsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "tutord",
		Subsystem: "performance",
		Name:      "upserts_total",
		Help:      "Total performance record upserts.",
	},
)
