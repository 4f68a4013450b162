package elnk

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-request counters and latencies for a Client.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    prometheus.Counter
}

// NewMetrics registers the client collectors with reg.
// A nil reg registers with the default prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elnk_requests_total",
				Help: "Total number of elnk API requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elnk_request_duration_seconds",
				Help:    "Duration of elnk API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		retriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "elnk_create_retries_total",
				Help: "Total number of retried short URL creations",
			},
		),
	}
}

// observe records one request. status 0 means no response was received.
func (m *Metrics) observe(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

func statusClass(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}
