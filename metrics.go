package guardian

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsCollector provides Prometheus metrics for the request
// lifecycle. It is safe for concurrent use; a nil collector disables
// instrumentation.
type metricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

func newMetricsCollector(registry prometheus.Registerer) *metricsCollector {
	return &metricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_client_requests_total",
				Help: "Total number of API calls made",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guardian_client_request_duration_seconds",
				Help:    "Duration of individual request attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_client_retries_total",
				Help: "Total number of retry attempts scheduled",
			},
			[]string{"operation", "kind"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_client_errors_total",
				Help: "Total number of calls that resolved to an error",
			},
			[]string{"operation", "kind"},
		),
	}
}

func (m *metricsCollector) recordAttempt(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *metricsCollector) recordRetry(operation string, kind Kind) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(operation, string(kind)).Inc()
}

func (m *metricsCollector) recordOutcome(operation string, kind Kind) {
	if m == nil {
		return
	}
	if kind == "" {
		m.requestsTotal.WithLabelValues(operation, "success").Inc()
		return
	}
	m.requestsTotal.WithLabelValues(operation, "error").Inc()
	m.errorsTotal.WithLabelValues(operation, string(kind)).Inc()
}
