package sweep

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/safewarmer/internal/domain"
	"github.com/hamed0406/safewarmer/internal/probe"
)

// Latency buckets in milliseconds; uncached gateway responses run into seconds.
var latencyBuckets = []float64{
	5, 10, 25,
	50, 100, 250,
	500, 1000, 2500,
	5000, 10000, 30000,
}

// Metrics is safe to use as a nil pointer; observations are then dropped.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	safes    prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "safewarmer_requests_total",
				Help: "Warm-up requests issued, by endpoint kind and status code (0 for transport errors)",
			},
			[]string{"kind", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "safewarmer_latency_ms",
				Help:    "Warm-up request latency in milliseconds",
				Buckets: latencyBuckets,
			},
			[]string{"kind"},
		),
		safes: f.NewCounter(prometheus.CounterOpts{
			Name: "safewarmer_safes_total",
			Help: "Safes fully swept",
		}),
	}
}

func (m *Metrics) observe(kind domain.EndpointKind, r probe.Result) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind.String(), strconv.Itoa(r.StatusCode)).Inc()
	m.latency.WithLabelValues(kind.String()).Observe(r.LatencyMS())
}

func (m *Metrics) safeDone() {
	if m == nil {
		return
	}
	m.safes.Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
