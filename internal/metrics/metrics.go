package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcome labels for the webhook_requests_total counter.
const (
	OutcomeCreated          = "created"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeValidationError  = "validation_error"
)

// LatencyBucketsMs are the request latency histogram boundaries. The +Inf
// overflow bucket is implicit.
var LatencyBucketsMs = []float64{100, 500, 1000}

// Metrics owns all request-level instruments behind a private registry so
// that nothing in the process mutates metrics state ambiently. It is safe
// for concurrent use by multiple request handlers.
type Metrics struct {
	reg *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	webhookRequests *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a Metrics with its own registry and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by path and status.",
			},
			[]string{"path", "status"},
		),
		webhookRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_requests_total",
				Help: "Total number of webhook calls by outcome.",
			},
			[]string{"result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "request_latency_ms",
				Help:    "Request latency in milliseconds by path.",
				Buckets: LatencyBucketsMs,
			},
			[]string{"path"},
		),
	}
	m.reg.MustRegister(m.httpRequests, m.webhookRequests, m.latency)
	return m
}

// IncHTTP counts one request against (path, status).
func (m *Metrics) IncHTTP(path string, status int) {
	m.httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// IncWebhook counts one webhook call against its outcome.
func (m *Metrics) IncWebhook(result string) {
	m.webhookRequests.WithLabelValues(result).Inc()
}

// ObserveLatency records one request latency sample for path.
func (m *Metrics) ObserveLatency(path string, latencyMs float64) {
	m.latency.WithLabelValues(path).Observe(latencyMs)
}

// Handler serves the registry in the Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, used by tests that assert on
// gathered metric families.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
