package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics_DoesNothing(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	t.Run("does not panic with valid args", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordValidation(ctx, "profile.name", "VALID", time.Millisecond)
			m.RecordStatusTransition(ctx, "profile.name", "VALID", "INVALID")
			m.RecordAsyncValidation(ctx, "profile.name", time.Millisecond, nil)
		})
	})

	t.Run("does not panic with error", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordAsyncValidation(ctx, "profile.name", time.Millisecond, errors.New("test"))
		})
	})

	t.Run("does not panic with empty path", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordValidation(ctx, "", "", 0)
		})
	})
}

func TestNoopSpanManager_ReturnsContextUnchanged(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("validation span", func(t *testing.T) {
		ctx := context.Background()
		newCtx, span := sm.StartValidationSpan(ctx, "profile.name")

		assert.Equal(t, ctx, newCtx, "Context should be unchanged")
		assert.NotNil(t, span, "Span should not be nil")
		assert.False(t, span.IsRecording())
	})

	t.Run("async validation span", func(t *testing.T) {
		ctx := context.Background()
		newCtx, span := sm.StartAsyncValidationSpan(ctx, "profile.email")

		assert.Equal(t, ctx, newCtx)
		assert.False(t, span.IsRecording())
	})
}

func TestNoopSpanManager_DoesNothing(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("end with nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, nil)
			sm.EndSpanWithError(nil, errors.New("test"))
		})
	})

	t.Run("end with noop span does not panic", func(t *testing.T) {
		_, span := sm.StartValidationSpan(context.Background(), "p")
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(span, errors.New("test"))
		})
	})

	t.Run("add event does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(context.Background(), "event", attribute.String("k", "v"))
			sm.AddSpanEvent(context.Background(), "")
		})
	})
}

func TestNoopImplementations_FullLifecycle(t *testing.T) {
	// Noop implementations must survive a realistic revalidation sequence
	// without side effects.
	metrics := NoopMetrics{}
	spans := NoopSpanManager{}

	ctx := context.Background()
	ctx, walkSpan := spans.StartValidationSpan(ctx, "profile")

	for _, path := range []string{"profile.name", "profile.email"} {
		metrics.RecordValidation(ctx, path, "VALID", time.Millisecond)
		metrics.RecordStatusTransition(ctx, path, "VALID", "PENDING")

		asyncCtx, asyncSpan := spans.StartAsyncValidationSpan(ctx, path)
		metrics.RecordAsyncValidation(asyncCtx, path, time.Millisecond, nil)
		spans.EndSpanWithError(asyncSpan, nil)
	}

	spans.EndSpanWithError(walkSpan, nil)
}
