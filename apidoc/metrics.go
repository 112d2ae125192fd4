package apidoc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultRegistered = "registered"
	resultSkipped    = "skipped"
	resultFailed     = "failed"
)

type metrics struct {
	endpoints     *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		endpoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "automd",
				Name:      "endpoints_total",
				Help:      "Total number of endpoints processed by document builds",
			},
			[]string{"method", "result"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "automd",
				Name:      "build_duration_seconds",
				Help:      "Document build duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	var err error
	if m.endpoints, err = register(reg, m.endpoints); err != nil {
		return nil, err
	}
	if m.buildDuration, err = register(reg, m.buildDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an equal collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) endpoint(method, result string) {
	if m == nil {
		return
	}
	m.endpoints.WithLabelValues(method, result).Inc()
}

func (m *metrics) observeBuild(seconds float64) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(seconds)
}
