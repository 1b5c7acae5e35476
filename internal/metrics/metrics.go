// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	StatsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_query_duration_seconds",
			Help:    "Aggregation query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope", "kind"},
	)

	StatsQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_query_errors_total",
			Help: "Total number of failed aggregation queries",
		},
		[]string{"scope", "kind"},
	)
)
