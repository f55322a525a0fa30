// Package observability provides production-grade observability features
// for formtree: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds formtree context to a logger.
// Returns a new logger with form_id and control_path fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "form-a1b2", "profile.name")
//	enriched.Info("doing work") // includes form_id, control_path
func EnrichLogger(logger *slog.Logger, formID, controlPath string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("form_id", formID),
		slog.String("control_path", controlPath),
	)
}

// LogValidation logs a completed revalidation of a control.
func LogValidation(logger *slog.Logger, formID, controlPath, status string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("control revalidated",
		slog.String("form_id", formID),
		slog.String("control_path", controlPath),
		slog.String("status", status),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStatusTransition logs a control status change.
func LogStatusTransition(logger *slog.Logger, controlPath, from, to string) {
	if logger == nil {
		return
	}
	logger.Debug("status transition",
		slog.String("control_path", controlPath),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogAsyncValidationStart logs the start of an async validation run.
func LogAsyncValidationStart(logger *slog.Logger, controlPath string, seq int) {
	if logger == nil {
		return
	}
	logger.Debug("async validation starting",
		slog.String("control_path", controlPath),
		slog.Int("seq", seq),
	)
}

// LogAsyncValidationResult logs the completion of an async validation run.
// Superseded means a newer run was started before this one resolved; its
// result is still applied (last resolution wins).
func LogAsyncValidationResult(logger *slog.Logger, controlPath string, seq int, superseded bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("async validation resolved",
		slog.String("control_path", controlPath),
		slog.Int("seq", seq),
		slog.Bool("superseded", superseded),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogAsyncValidationError logs an async validator failure.
func LogAsyncValidationError(logger *slog.Logger, controlPath string, err error) {
	if logger == nil {
		return
	}
	logger.Error("async validator failed",
		slog.String("control_path", controlPath),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000.0
	}
}
