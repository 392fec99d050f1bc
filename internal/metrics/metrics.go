package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProvisionMetrics counts provisioning activity per backend and operation.
// A nil *ProvisionMetrics is valid and records nothing, which keeps the
// provisioning core testable without a registry.
type ProvisionMetrics struct {
	attemptsTotal  *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	succeededTotal *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

func NewProvisionMetrics() *ProvisionMetrics {
	return &ProvisionMetrics{
		attemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "provision_attempts_total",
			Help: "Provisioning attempts started, by backend and operation.",
		}, []string{"backend", "operation"}),
		failuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "provision_failures_total",
			Help: "Failed attempts, by backend, operation and failure class.",
		}, []string{"backend", "operation", "class"}),
		succeededTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "provision_succeeded_total",
			Help: "Successful attempts, by backend and operation.",
		}, []string{"backend", "operation"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provision_attempt_duration_seconds",
			Help:    "Duration of successful attempts.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"backend", "operation"}),
	}
}

func (m *ProvisionMetrics) AttemptStarted(backend, operation string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(backend, operation).Inc()
}

func (m *ProvisionMetrics) AttemptFailed(backend, operation, class string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(backend, operation, class).Inc()
}

func (m *ProvisionMetrics) AttemptSucceeded(backend, operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.succeededTotal.WithLabelValues(backend, operation).Inc()
	m.duration.WithLabelValues(backend, operation).Observe(elapsed.Seconds())
}
