// File: internal/infra/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Commands handled, by command token and outcome.",
		},
		[]string{"command", "outcome"},
	)

	updatesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_dropped_total",
			Help: "Inbound updates dropped before dispatch, by reason.",
		},
		[]string{"reason"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream REST calls, by service and outcome.",
		},
		[]string{"service", "outcome"},
	)

	aiLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"model", "success"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			commandsTotal, updatesDropped, upstreamRequests, aiLatencyMs,
		)
	})
}

func IncCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

func IncUpdateDropped(reason string) {
	updatesDropped.WithLabelValues(reason).Inc()
}

func IncUpstream(service, outcome string) {
	upstreamRequests.WithLabelValues(service, outcome).Inc()
}

func ObserveAILatency(model string, success bool, ms float64) {
	label := "false"
	if success {
		label = "true"
	}
	aiLatencyMs.WithLabelValues(model, label).Observe(ms)
}
