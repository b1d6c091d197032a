// Package metrics exposes Prometheus collectors for the proxy handlers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicelab"

// Metrics holds the collectors on a private registry so tests and multiple
// routers never collide on the default registerer.
type Metrics struct {
	registry *prometheus.Registry

	proxyRequests    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	synthChars       prometheus.Counter
	synthCostCents   prometheus.Counter
	inflight         prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		proxyRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proxy_requests_total",
				Help:      "Total number of proxy requests by endpoint and response status",
			},
			[]string{"endpoint", "status"},
		),

		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of provider API calls in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"}, // operation: voices, synthesize, stream
		),

		synthChars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_characters_total",
			Help:      "Total characters sent to the provider for synthesis",
		}),

		synthCostCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_estimated_cost_cents_total",
			Help:      "Estimated provider cost of synthesis requests in US cents",
		}),

		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_synthesis",
			Help:      "Number of synthesis requests currently in flight",
		}),
	}

	m.registry.MustRegister(
		m.proxyRequests,
		m.providerDuration,
		m.synthChars,
		m.synthCostCents,
		m.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest counts a finished proxy request.
func (m *Metrics) RecordRequest(endpoint string, status int) {
	m.proxyRequests.WithLabelValues(endpoint, statusLabel(status)).Inc()
}

// ObserveProvider records how long a provider call took.
func (m *Metrics) ObserveProvider(operation string, started time.Time) {
	m.providerDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordSynthesis adds the character count and estimated cost of one synthesis request.
func (m *Metrics) RecordSynthesis(chars int, cents float64) {
	m.synthChars.Add(float64(chars))
	m.synthCostCents.Add(cents)
}

// InflightInc and InflightDec track synthesis requests in progress.
func (m *Metrics) InflightInc() { m.inflight.Inc() }
func (m *Metrics) InflightDec() { m.inflight.Dec() }

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200 && status < 300:
		return "2xx"
	}
	return "other"
}
