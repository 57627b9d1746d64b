package query

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache activity per query family. Keys never become labels.
type Metrics struct {
	lookups       *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	retries       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics registers the cache collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disa",
			Subsystem: "query",
			Name:      "lookups_total",
			Help:      "Cache lookups by result (fresh, fetch, shared).",
		}, []string{"family", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disa",
			Subsystem: "query",
			Name:      "fetches_total",
			Help:      "Completed backend fetches by outcome.",
		}, []string{"family", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disa",
			Subsystem: "query",
			Name:      "retries_total",
			Help:      "Fetch attempts repeated after a retryable failure.",
		}, []string{"family"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disa",
			Subsystem: "query",
			Name:      "invalidations_total",
			Help:      "Entries marked stale or removed.",
		}, []string{"family"}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.fetches, m.retries, m.invalidations)
	}
	return m
}

func (m *Metrics) lookup(family, result string) {
	if m != nil {
		m.lookups.WithLabelValues(family, result).Inc()
	}
}

func (m *Metrics) fetched(family string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(family, outcome).Inc()
}

func (m *Metrics) retried(family string) {
	if m != nil {
		m.retries.WithLabelValues(family).Inc()
	}
}

func (m *Metrics) invalidated(family string, n int) {
	if m != nil && n > 0 {
		m.invalidations.WithLabelValues(family).Add(float64(n))
	}
}
