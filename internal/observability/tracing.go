package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the runtime's tracer instance, resolved from the global
// OTel tracer provider.
var tracer = otel.Tracer("manifold")

// SpanManager handles trace span lifecycle around registry and bus
// operations. Use NewSpanManager() for OTel tracing or NoopSpanManager{}
// when tracing is disabled.
type SpanManager interface {
	// StartRegisterSpan starts a span for a plugin registration attempt.
	StartRegisterSpan(ctx context.Context, pluginName string) (context.Context, trace.Span)

	// StartHookSpan starts a span for one hook dispatch pass.
	StartHookSpan(ctx context.Context, event string) (context.Context, trace.Span)

	// StartEmitSpan starts a span for one bus emission attempt.
	StartEmitSpan(ctx context.Context, event, eventID string) (context.Context, trace.Span)

	// EndSpan completes a span, optionally recording an error.
	EndSpan(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager backed by the global OTel tracer
// provider. Configure the provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartRegisterSpan(ctx context.Context, pluginName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "manifold.register",
		trace.WithAttributes(attribute.String("plugin.name", pluginName)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) StartHookSpan(ctx context.Context, event string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "manifold.hooks."+event,
		trace.WithAttributes(attribute.String("hook.event", event)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) StartEmitSpan(ctx context.Context, event, eventID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "manifold.emit",
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.String("event.id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
