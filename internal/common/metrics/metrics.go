// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_turns_processed_total",
			Help: "Total number of chat turns processed",
		},
		[]string{"category"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_turns_failed_total",
			Help: "Total number of chat turns that hit the error boundary",
		},
		[]string{"error_code"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "support_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"category"},
	)

	RouteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_route_decisions_total",
			Help: "Total routing decisions by target handler",
		},
		[]string{"target"},
	)

	AICacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_ai_cache_hits_total",
			Help: "Total completion cache hits",
		},
	)

	AICacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_ai_cache_misses_total",
			Help: "Total completion cache misses",
		},
	)

	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_quota_rejections_total",
			Help: "Total turns rejected by the per-session query quota",
		},
	)

	EscalationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_escalations_sent_total",
			Help: "Total CRM escalation notifications sent",
		},
		[]string{"channel"},
	)
)
