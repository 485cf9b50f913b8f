package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Update results recorded by IncrementUpdates.
const (
	UpdateOK      = "ok"
	UpdateBadJSON = "bad_json"
	UpdateInvalid = "invalid"
	UpdateFailed  = "error"
)

// Metrics holds the Prometheus collectors for one server. Each Metrics owns
// its own registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	InstanceUpdates *prometheus.CounterVec
	Watchers        prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dativetop_http_requests_total",
			Help: "Total number of HTTP requests handled, by method and status code",
		}, []string{"method", "code"}),
		InstanceUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dativetop_instance_updates_total",
			Help: "Total number of OLD instance update attempts, by result",
		}, []string{"result"}),
		Watchers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dativetop_watchers",
			Help: "Number of connected registry change-feed clients",
		}),
	}
}

// IncrementRequests records one handled request.
func (m *Metrics) IncrementRequests(method, code string) {
	m.Requests.WithLabelValues(method, code).Inc()
}

// IncrementUpdates records one update attempt with the given result.
func (m *Metrics) IncrementUpdates(result string) {
	m.InstanceUpdates.WithLabelValues(result).Inc()
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
