package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-level HTTP metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lotto_http_requests_total",
			Help: "HTTP requests served, by route and status",
		}, []string{"route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lotto_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveRequest(route string, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
