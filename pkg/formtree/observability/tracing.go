package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the formtree tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("formtree")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartValidationSpan starts a span for a synchronous revalidation walk.
	// Returns the context with span and the span itself.
	StartValidationSpan(ctx context.Context, controlPath string) (context.Context, trace.Span)

	// StartAsyncValidationSpan starts a span for an async validation run.
	StartAsyncValidationSpan(ctx context.Context, controlPath string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartValidationSpan starts a span for a synchronous revalidation walk.
func (m *otelSpanManager) StartValidationSpan(ctx context.Context, controlPath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "formtree.validate",
		trace.WithAttributes(
			attribute.String("control.path", controlPath),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartAsyncValidationSpan starts a span for an async validation run.
func (m *otelSpanManager) StartAsyncValidationSpan(ctx context.Context, controlPath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "formtree.validate.async",
		trace.WithAttributes(
			attribute.String("control.path", controlPath),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
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

// AddSpanEvent adds an event to the current span in context.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
