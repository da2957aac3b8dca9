package reaper

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "reaper"
	subsystem = "channel"
)

// Metrics counts command traffic through a Client.
type Metrics struct {
	Commands *prometheus.CounterVec
	Requests *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates an unregistered metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_total",
			Help:      "Number of commands sent to the host, by kind.",
		}, []string{"kind"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Number of requests sent to the host.",
		}, []string{"mode"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Number of failed requests.",
		}, []string{"mode"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Round-trip time of host requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"mode"}),
	}
}

// PrometheusCollectors returns the collectors to register.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.Commands, m.Requests, m.Errors, m.Duration}
}

func (m *Metrics) observe(mode string, commands []Command, seconds float64, err error) {
	if m == nil {
		return
	}
	for _, c := range commands {
		m.Commands.WithLabelValues(c.kind()).Inc()
	}
	m.Requests.WithLabelValues(mode).Inc()
	m.Duration.WithLabelValues(mode).Observe(seconds)
	if err != nil {
		m.Errors.WithLabelValues(mode).Inc()
	}
}
