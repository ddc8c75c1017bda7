package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds HTTP-level Prometheus metrics. Ledger submission metrics
// live in internal/ledger/metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RunsNotarized   prometheus.Counter
	VerifyRequests  *prometheus.CounterVec
}

// New creates and registers all HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lexseal_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RunsNotarized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lexseal_runs_notarized_total",
			Help: "Total research runs notarized end to end",
		}),
		VerifyRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseal_verify_requests_total",
			Help: "Verification requests by kind and result",
		}, []string{"kind", "result"}),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// IncrementRunsNotarized counts a fully notarized run.
func (m *Metrics) IncrementRunsNotarized() {
	m.RunsNotarized.Inc()
}

// IncrementVerify counts a verification request outcome.
func (m *Metrics) IncrementVerify(kind, result string) {
	m.VerifyRequests.WithLabelValues(kind, result).Inc()
}
