package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// QueriesTotal counts executed statements by path (query|raw_query) and result (ok|error).
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_queries_total",
			Help: "Total number of executed statements",
		},
		[]string{"path", "result"},
	)

	// LiveConnections tracks connections with an attached executor.
	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_live_connections",
			Help: "Number of connections with a live executor",
		},
	)
)
