package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records formtree metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordValidation records one revalidation of a control with the
	// resulting status and its duration.
	RecordValidation(ctx context.Context, controlPath, status string, duration time.Duration)

	// RecordStatusTransition records a control status change.
	RecordStatusTransition(ctx context.Context, controlPath, from, to string)

	// RecordAsyncValidation records an async validation run completion.
	RecordAsyncValidation(ctx context.Context, controlPath string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	validations       metric.Int64Counter
	validationLatency metric.Float64Histogram
	transitions       metric.Int64Counter
	asyncRuns         metric.Int64Counter
	asyncLatency      metric.Float64Histogram
	asyncErrors       metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("formtree")

	validations, err := meter.Int64Counter("formtree.control.validations",
		metric.WithDescription("Number of control revalidations"),
	)
	if err != nil {
		return nil, err
	}

	validationLatency, err := meter.Float64Histogram("formtree.control.validation_latency_ms",
		metric.WithDescription("Control revalidation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter("formtree.control.status_transitions",
		metric.WithDescription("Number of control status transitions"),
	)
	if err != nil {
		return nil, err
	}

	asyncRuns, err := meter.Int64Counter("formtree.async.validations",
		metric.WithDescription("Number of async validation runs"),
	)
	if err != nil {
		return nil, err
	}

	asyncLatency, err := meter.Float64Histogram("formtree.async.latency_ms",
		metric.WithDescription("Async validation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	asyncErrors, err := meter.Int64Counter("formtree.async.errors",
		metric.WithDescription("Number of async validator failures"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		validations:       validations,
		validationLatency: validationLatency,
		transitions:       transitions,
		asyncRuns:         asyncRuns,
		asyncLatency:      asyncLatency,
		asyncErrors:       asyncErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordValidation records one revalidation of a control.
func (m *otelMetrics) RecordValidation(ctx context.Context, controlPath, status string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("control_path", controlPath),
		attribute.String("status", status),
	}

	m.validations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.validationLatency.Record(ctx, float64(duration.Microseconds())/1000.0, metric.WithAttributes(attrs...))
}

// RecordStatusTransition records a control status change.
func (m *otelMetrics) RecordStatusTransition(ctx context.Context, controlPath, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("control_path", controlPath),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordAsyncValidation records an async validation run.
func (m *otelMetrics) RecordAsyncValidation(ctx context.Context, controlPath string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("control_path", controlPath),
	}

	m.asyncRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.asyncLatency.Record(ctx, float64(duration.Microseconds())/1000.0, metric.WithAttributes(attrs...))

	if err != nil {
		m.asyncErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
