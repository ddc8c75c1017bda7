package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SubmissionsTotal *prometheus.CounterVec
	ConflictsTotal   *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
	EventsEmitted    prometheus.Counter
	EventsDropped    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseal_ledger_submissions_total",
			Help: "Total ledger submissions by registry and outcome",
		}, []string{"registry", "outcome"}),
		ConflictsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseal_ledger_conflicts_total",
			Help: "Total write-once conflicts by registry",
		}, []string{"registry"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexseal_ledger_submit_duration_seconds",
			Help:    "Latency from submission to confirmation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		EventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lexseal_ledger_events_emitted_total",
			Help: "Total confirmed-write events handed to the event sink",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lexseal_ledger_events_dropped_total",
			Help: "Total events dropped because the sink buffer was full",
		}),
	}
}

func (m *Metrics) ObserveSubmission(registry, outcome string, elapsed time.Duration) {
	m.SubmissionsTotal.WithLabelValues(registry, outcome).Inc()
	m.SubmitDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementConflicts(registry string) {
	m.ConflictsTotal.WithLabelValues(registry).Inc()
}

func (m *Metrics) IncrementEventsEmitted() {
	m.EventsEmitted.Inc()
}

func (m *Metrics) IncrementEventsDropped() {
	m.EventsDropped.Inc()
}
