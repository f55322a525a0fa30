package formtree

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/formtree/pkg/formtree/observability"
)

// Option configures a control at construction.
//
// Tree-wide options (WithLogger, WithMetrics, WithTracing, WithSettings,
// WithFormID) act on the control's tree; when a configured control is
// attached to a parent, the subtree adopts the parent's tree, so apply
// them to the root control.
type Option func(*controlBase)

// WithValidators binds sync validators, composed in order.
//
// Example:
//
//	formtree.NewField("", formtree.WithValidators(
//	    validator.Required(),
//	    validator.MinLength(3)))
func WithValidators(fns ...ValidatorFunc) Option {
	return func(b *controlBase) {
		b.validator = Compose(fns...)
	}
}

// WithAsyncValidators binds async validators, composed in order.
func WithAsyncValidators(fns ...AsyncValidatorFunc) Option {
	return func(b *controlBase) {
		b.asyncValidator = ComposeAsync(fns...)
	}
}

// WithUpdateOn sets the control's update strategy. Unset controls inherit
// from their parent, defaulting to UpdateOnChange at the root.
func WithUpdateOn(u UpdateOn) Option {
	return func(b *controlBase) {
		b.updateOn = u
	}
}

// WithLogger sets the tree's structured logger. Revalidations and async
// validation runs log at Debug, async validator failures at Error.
func WithLogger(logger *slog.Logger) Option {
	return func(b *controlBase) {
		b.tree().logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for the tree.
// Uses the global OTel meter provider.
func WithMetrics(enabled bool) Option {
	return func(b *controlBase) {
		if enabled {
			b.tree().metrics = observability.NewMetricsRecorder()
		} else {
			b.tree().metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing for the tree.
// Uses the global OTel tracer provider.
func WithTracing(enabled bool) Option {
	return func(b *controlBase) {
		if enabled {
			b.tree().spans = observability.NewSpanManager()
		} else {
			b.tree().spans = observability.NoopSpanManager{}
		}
	}
}

// WithFormID overrides the auto-generated form identifier used in logs.
func WithFormID(id string) Option {
	return func(b *controlBase) {
		if id != "" {
			b.tree().formID = id
		}
	}
}

// WithAsyncTimeout bounds each async validation run. Zero disables the
// bound. The timeout is delivered through the validator's context; a
// validator that honors it returns context.DeadlineExceeded, which the
// engine surfaces under ErrorCodeAsync.
func WithAsyncTimeout(d time.Duration) Option {
	return func(b *controlBase) {
		if d > 0 {
			b.tree().asyncTimeout = d
		}
	}
}

// WithSettings applies a Settings bundle, typically loaded from a config
// file. Equivalent to the corresponding individual options.
func WithSettings(s Settings) Option {
	return func(b *controlBase) {
		b.tree().defaultUpdateOn = s.DefaultUpdateOn
		if s.AsyncTimeout > 0 {
			b.tree().asyncTimeout = s.AsyncTimeout
		}
		if s.Metrics {
			b.tree().metrics = observability.NewMetricsRecorder()
		}
		if s.Tracing {
			b.tree().spans = observability.NewSpanManager()
		}
	}
}
