package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdash_fetches_total",
		Help: "Fetch cycles per view, labelled by how they ended (started, applied, failed, cancelled, stale).",
	},
		[]string{"view", "outcome"},
	)

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdash_line_mutations_total",
		Help: "Order-line status edits, labelled by result (ok, patch_failed, refresh_failed, rejected).",
	},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderdash_api_request_duration_seconds",
		Help:    "Latency of requests sent to the order API.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"endpoint", "code"},
	)

	DisplayedOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderdash_displayed_orders",
		Help: "Number of orders on the currently displayed dashboard page.",
	})

	AuditEntriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdash_audit_entries_dropped_total",
		Help: "Audit entries that could not be handed to a worker and were written directly to the log.",
	})
)
