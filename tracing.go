package nasc

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName    = "github.com/toutaio/toutago-nasc-registry"
	constructSpan = "nasc.construct"
)

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startSpan opens the span of one construction. Dependencies built on the
// way become its children.
func (n *Nasc) startSpan(ctx context.Context, t reflect.Type, qualifier string) (context.Context, trace.Span) {
	return n.tracer.Start(ctx, constructSpan,
		trace.WithAttributes(
			attribute.String("component.type", t.String()),
			attribute.String("component.qualifier", qualifier),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
