// Package metrics exposes Prometheus collectors for the HTTP API and the webhook dispatcher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ytlinks"

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	webhookCalls    *prometheus.CounterVec
	webhookDuration *prometheus.HistogramVec
	webhookRetries  *prometheus.CounterVec

	statusTransitions *prometheus.CounterVec
	queueDepth        prometheus.Gauge
}

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
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		webhookCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_calls_total",
			Help:      "Webhook dispatches by use and resulting link status.",
		}, []string{"use", "status"}),
		webhookDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_duration_seconds",
			Help:      "Time spent delivering a link to n8n, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"use"}),
		webhookRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_retries_total",
			Help:      "Webhook attempts beyond the first.",
		}, []string{"use"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_status_transitions_total",
			Help:      "Link status writes by target status and origin (api or dispatcher).",
		}, []string{"status", "origin"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_depth",
			Help:      "Jobs waiting in the in-memory dispatch queue.",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveWebhook records the outcome of one dispatched job.
func (m *Metrics) ObserveWebhook(use, status string, attempts int, d time.Duration) {
	m.webhookCalls.WithLabelValues(use, status).Inc()
	m.webhookDuration.WithLabelValues(use).Observe(d.Seconds())
	if attempts > 1 {
		m.webhookRetries.WithLabelValues(use).Add(float64(attempts - 1))
	}
}

// ObserveStatus records a link status write.
func (m *Metrics) ObserveStatus(status, origin string) {
	m.statusTransitions.WithLabelValues(status, origin).Inc()
}

// SetQueueDepth records the number of queued jobs.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
