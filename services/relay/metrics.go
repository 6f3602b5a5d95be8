package relay

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by the relay.
type Metrics struct {
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// NewMetrics registers the relay collectors with reg. Collectors already registered
// under the same name are reused, so several relays may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "washrelay",
		Name:      "requests_total",
		Help:      "Service requests handled, by outcome.",
	}, []string{"outcome"})
	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "washrelay",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of calls to the vendor API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"call"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if upstream, err = register(reg, upstream); err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, upstream: upstream}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func (m *Metrics) observeOutcome(err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(Outcome(err)).Inc()
}

func (m *Metrics) observeUpstream(call string, seconds float64) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(call).Observe(seconds)
}
