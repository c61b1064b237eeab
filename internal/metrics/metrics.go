// Package metrics holds the prometheus collectors for upstream calls and
// state store actions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cosmic_weather"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	actions          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests by upstream service and status class.",
		}, []string{"service", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound request latency by upstream service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_actions_total",
			Help:      "Settled store actions by data source and outcome.",
		}, []string{"source", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.upstreamRequests, m.upstreamDuration, m.actions)
	}
	return m
}

// ObserveUpstream records one outbound request. status is 0 when no response
// was received.
func (m *Metrics) ObserveUpstream(service string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(service, statusBucket(status)).Inc()
	m.upstreamDuration.WithLabelValues(service).Observe(d.Seconds())
}

// IncAction records a settled action.
func (m *Metrics) IncAction(source, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(source, outcome).Inc()
}

func statusBucket(code int) string {
	switch {
	case code == 0:
		return "transport_error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
