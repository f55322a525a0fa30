package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(string) slog.Handler { return h }

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds form_id and control_path", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "form-a1b2", "profile.name")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "form-a1b2", record["form_id"])
		assert.Equal(t, "profile.name", record["control_path"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "form", "path"))
	})
}

func TestLogValidation(t *testing.T) {
	t.Run("logs at DEBUG with fields", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogValidation(logger, "form-a1b2", "profile.name", "INVALID", 1.25)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "DEBUG", record["level"])
		assert.Equal(t, "control revalidated", record["msg"])
		assert.Equal(t, "form-a1b2", record["form_id"])
		assert.Equal(t, "profile.name", record["control_path"])
		assert.Equal(t, "INVALID", record["status"])
		assert.Equal(t, 1.25, record["duration_ms"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogValidation(nil, "form", "path", "VALID", 0)
		})
	})
}

func TestLogStatusTransition(t *testing.T) {
	t.Run("logs from and to", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogStatusTransition(logger, "profile.email", "VALID", "PENDING")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "DEBUG", record["level"])
		assert.Equal(t, "status transition", record["msg"])
		assert.Equal(t, "profile.email", record["control_path"])
		assert.Equal(t, "VALID", record["from"])
		assert.Equal(t, "PENDING", record["to"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogStatusTransition(nil, "path", "VALID", "INVALID")
		})
	})
}

func TestLogAsyncValidation(t *testing.T) {
	t.Run("start logs seq", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogAsyncValidationStart(logger, "profile.email", 3)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "async validation starting", record["msg"])
		assert.Equal(t, float64(3), record["seq"]) // JSON decodes ints as float64
	})

	t.Run("result logs superseded flag", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogAsyncValidationResult(logger, "profile.email", 2, true, 40.5)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "async validation resolved", record["msg"])
		assert.Equal(t, true, record["superseded"])
		assert.Equal(t, 40.5, record["duration_ms"])
	})

	t.Run("error logs at ERROR level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogAsyncValidationError(logger, "profile.email", errors.New("probe down"))

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "async validator failed", record["msg"])
		assert.Equal(t, "probe down", record["error"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogAsyncValidationStart(nil, "path", 1)
			LogAsyncValidationResult(nil, "path", 1, false, 0)
			LogAsyncValidationError(nil, "path", errors.New("err"))
		})
	})
}

func TestTimedOperation(t *testing.T) {
	t.Run("measures duration", func(t *testing.T) {
		done := TimedOperation()
		time.Sleep(10 * time.Millisecond)
		duration := done()

		assert.GreaterOrEqual(t, duration, 10.0)
		assert.Less(t, duration, 1000.0)
	})

	t.Run("can be called multiple times", func(t *testing.T) {
		done := TimedOperation()
		time.Sleep(5 * time.Millisecond)
		d1 := done()
		time.Sleep(5 * time.Millisecond)
		d2 := done()

		assert.Greater(t, d2, d1)
	})
}
