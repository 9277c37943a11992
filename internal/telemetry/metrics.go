package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CourierErrors   *prometheus.CounterVec
	WebhooksTotal   *prometheus.CounterVec
}

// NewMetrics creates Prometheus metrics registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates Prometheus metrics registered on the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_requests_total",
				Help: "Total number of requests by operation, courier, and status",
			},
			[]string{"operation", "courier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courier_request_duration_seconds",
				Help:    "Request duration in seconds by operation and courier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "courier"},
		),
		CourierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_api_errors_total",
				Help: "Total courier API errors by courier and error type",
			},
			[]string{"courier", "error_type"},
		),
		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_webhooks_total",
				Help: "Total inbound webhooks by courier and outcome",
			},
			[]string{"courier", "outcome"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, courier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, courier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, courier).Observe(duration)
}

// RecordError records a courier error metric.
func (m *Metrics) RecordError(courier, errorType string) {
	m.CourierErrors.WithLabelValues(courier, errorType).Inc()
}

// RecordWebhook records an inbound webhook metric.
func (m *Metrics) RecordWebhook(courier, outcome string) {
	m.WebhooksTotal.WithLabelValues(courier, outcome).Inc()
}
