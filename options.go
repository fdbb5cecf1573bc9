package nasc

import (
	"github.com/jrivets/log4g"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
)

// Option is a function that configures a Nasc container.
type Option func(*Nasc) error

// WithConfig applies non-default values of cfg to the container settings.
func WithConfig(cfg *Config) Option {
	return func(n *Nasc) error {
		n.config.Apply(cfg)
		return n.config.Validate()
	}
}

// WithLogger replaces the container logger.
func WithLogger(logger log4g.Logger) Option {
	return func(n *Nasc) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		n.logger = logger
		return nil
	}
}

// WithExactLookup makes a request without qualifier match only components
// registered without qualifier.
func WithExactLookup() Option {
	return func(n *Nasc) error {
		n.config.DefaultLookup = LookupExact
		return nil
	}
}

// WithStickyFailures keeps the in-progress mark of components whose
// construction failed, see Config.StickyFailures.
func WithStickyFailures() Option {
	return func(n *Nasc) error {
		n.config.StickyFailures = true
		return nil
	}
}

// WithMetadata adds a metadata source consulted after the built-in catalog.
func WithMetadata(m Metadata) Option {
	return func(n *Nasc) error {
		if m == nil {
			return errors.New("metadata cannot be nil")
		}
		n.metadata = append(n.metadata, m)
		return nil
	}
}

// WithMetrics makes the registry report its activity to m.
func WithMetrics(m *Metrics) Option {
	return func(n *Nasc) error {
		if m == nil {
			return errors.New("metrics cannot be nil")
		}
		n.metrics = m
		return nil
	}
}

// WithTracerProvider makes the registry trace constructions with a tracer of
// tp. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(n *Nasc) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		n.tracer = tp.Tracer(tracerName)
		return nil
	}
}
