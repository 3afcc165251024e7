package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConsoleMetrics exposes counters/histograms for the admin console:
// calls to the upstream clinic API and route-guard decisions.
type ConsoleMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	guardDenied     *prometheus.CounterVec
}

func NewConsoleMetrics(reg prometheus.Registerer) *ConsoleMetrics {
	m := &ConsoleMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests to the clinic API",
		}, []string{"operation", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consola",
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Latency of clinic API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		guardDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consola",
			Subsystem: "guard",
			Name:      "denied_total",
			Help:      "Route guard denials by reason",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.guardDenied)
	return m
}

func (m *ConsoleMetrics) ObserveUpstream(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(operation, status).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *ConsoleMetrics) ObserveGuardDenied(reason string) {
	if m == nil {
		return
	}
	m.guardDenied.WithLabelValues(reason).Inc()
}
