package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP level Prometheus metrics.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates the HTTP metrics and registers them with reg; a nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalering_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, started time.Time) {
	m.RequestLatency.WithLabelValues(method, route, status).Observe(time.Since(started).Seconds())
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
