// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Total number of dispatch attempts per endpoint kind and outcome",
		},
		[]string{"endpoint_kind", "outcome"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dispatch_attempt_duration_seconds",
			Help: "Duration of individual dispatch attempts in seconds",
		},
		[]string{"endpoint_kind"},
	)

	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_merges_total",
			Help: "Total number of document merges by outcome",
		},
		[]string{"outcome"},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_batches_total",
			Help: "Total number of generation batches by outcome",
		},
		[]string{"outcome"},
	)

	ProxyCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_cache_events_total",
			Help: "Proxy response cache events (hit, miss, stale, store)",
		},
		[]string{"event"},
	)
)
