// Package metrics provides Prometheus metrics for riff.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/riff/internal/services"
)

const namespace = "riff"

// Metrics owns a registry and the collectors riff reports.
type Metrics struct {
	registry *prometheus.Registry

	// UserSyncTotal counts reconciliation outcomes.
	UserSyncTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts served requests by method and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration measures request handling time.
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ services.Recorder = (*Metrics)(nil)

// New creates a [Metrics] with its own registry, including Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UserSyncTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "user_sync_total",
				Help:      "Total number of user reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// RecordSync records a reconciliation outcome.
func (m *Metrics) RecordSync(outcome services.Outcome) {
	m.UserSyncTotal.WithLabelValues(outcome.String()).Inc()
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(method string, code int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
