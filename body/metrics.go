package body

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeParsed  = "parsed"
	outcomeError   = "error"
	outcomeIgnored = "ignored"
	outcomeAdopted = "adopted"
)

type metrics struct {
	bodies *prometheus.CounterVec
	bytes  *prometheus.HistogramVec
}

// newMetrics registers the parser collectors on reg. A nil registerer disables metrics.
// Collectors already registered by another parser are shared.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	bodies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bodyparser",
		Name:      "bodies_total",
		Help:      "Number of request bodies handled, by kind and outcome.",
	}, []string{"kind", "outcome"})

	bytes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bodyparser",
		Name:      "body_bytes",
		Help:      "Size of raw request bodies that were parsed.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
	}, []string{"kind"})

	var err error
	m := &metrics{}
	if m.bodies, err = register(reg, bodies); err != nil {
		return nil, err
	}
	if m.bytes, err = register(reg, bytes); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(kind Kind, outcome string, rawBytes int) {
	if m == nil {
		return
	}
	m.bodies.WithLabelValues(kind.String(), outcome).Inc()
	if outcome == outcomeParsed && rawBytes > 0 {
		m.bytes.WithLabelValues(kind.String()).Observe(float64(rawBytes))
	}
}
