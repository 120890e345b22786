package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector the service exports. A private registry
// keeps tests free of global registration conflicts.
var Registry = prometheus.NewRegistry()

var (
	gatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paygate",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Outbound provider calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	gatewayLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paygate",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound provider calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	reconciliations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paygate",
		Subsystem: "reconcile",
		Name:      "results_total",
		Help:      "Verification results by provider status and whether the store was written.",
	}, []string{"status", "action"})
)

func init() {
	Registry.MustRegister(
		gatewayRequests,
		gatewayLatency,
		reconciliations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveGateway records one provider call.
func ObserveGateway(operation string, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	gatewayRequests.WithLabelValues(operation, outcome).Inc()
	gatewayLatency.WithLabelValues(operation).Observe(took.Seconds())
}

// ObserveReconciliation records the outcome of one verification. action is
// "upserted", "skipped" or "failed".
func ObserveReconciliation(status, action string) {
	if status == "" {
		status = "none"
	}
	reconciliations.WithLabelValues(status, action).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
