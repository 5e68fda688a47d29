package weighting

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache decisions and observes weighting durations.
type Metrics struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	duration    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "m4ra",
			Name:      "weighting_cache_hits_total",
			Help:      "City weighting requests satisfied by the done flag.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "m4ra",
			Name:      "weighting_cache_misses_total",
			Help:      "City weighting requests that triggered recomputation.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "m4ra",
			Name:      "weighting_duration_seconds",
			Help:      "Duration of one external weighting invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"mode"}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.duration)
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) observe(mode string, seconds float64) {
	if m != nil {
		m.duration.WithLabelValues(mode).Observe(seconds)
	}
}
