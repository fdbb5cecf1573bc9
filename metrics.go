package nasc

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors describing the registry activity.
// Collectors are not registered automatically, use Register.
type Metrics struct {
	Constructed *prometheus.CounterVec
	Added       *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the registry collectors under the namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Constructed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "components_constructed_total",
				Help:      "Total number of components constructed by the registry",
			},
			[]string{"type"},
		),
		Added: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "components_added_total",
				Help:      "Total number of ready components added to the registry",
			},
			[]string{"type"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "construction_failures_total",
				Help:      "Total number of failed constructions",
			},
			[]string{"type", "reason"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "construction_duration_seconds",
				Help:      "Construction duration in seconds, dependencies included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}
}

// Register registers all collectors with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Constructed, m.Added, m.Failures, m.Duration} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) constructed(t reflect.Type, started time.Time) {
	if m == nil {
		return
	}
	m.Constructed.WithLabelValues(t.String()).Inc()
	m.Duration.WithLabelValues(t.String()).Observe(time.Since(started).Seconds())
}

func (m *Metrics) added(t reflect.Type) {
	if m == nil {
		return
	}
	m.Added.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) failed(t reflect.Type, err error) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(t.String(), failureReason(err)).Inc()
}

// failureReason maps a resolution error to a short label value.
func failureReason(err error) string {
	switch err.(type) {
	case *CyclicDependencyError:
		return "cycle"
	case *NoConstructorError:
		return "no_constructor"
	case *DependencyResolutionError:
		return "dependency"
	case *ConstructionError:
		return "constructor"
	case *PostConstructionError:
		return "hook"
	case *ListenerError:
		return "listener"
	}
	return "other"
}
