package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the notification API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	parsesTotal     *prometheus.CounterVec
	admissionsTotal *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		parsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birrflow_parses_total",
				Help: "Total extraction attempts by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		admissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birrflow_admissions_total",
				Help: "Total admission attempts by result.",
			},
			[]string{"result"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "birrflow_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveParse records one extraction attempt.
func (m *Metrics) ObserveParse(provider, outcome string) {
	m.parsesTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveAdmission records one admission attempt.
func (m *Metrics) ObserveAdmission(result string) {
	m.admissionsTotal.WithLabelValues(result).Inc()
}

// ObserveRequest records one HTTP request duration in seconds.
func (m *Metrics) ObserveRequest(route string, seconds float64) {
	m.requestDuration.WithLabelValues(route).Observe(seconds)
}
