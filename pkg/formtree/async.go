package formtree

import (
	"context"
	"time"

	"github.com/randalmurphal/formtree/pkg/formtree/observability"
)

// runAsyncValidator starts an async validation run for the control.
// Status flips to PENDING immediately; the validator executes on its own
// goroutine and, on resolution, re-enters the tree through setErrors
// exactly as a direct caller would.
//
// There is no cancellation. Starting a new run supersedes only the
// bookkeeping handle: an earlier in-flight run stays live and its
// resolution is still applied when it lands. When runs overlap, whichever
// resolves last in wall-clock time determines the final error state.
// Must be called with the tree lock held.
func (b *controlBase) runAsyncValidator(emit bool) {
	if b.asyncValidator == nil {
		return
	}

	b.status = StatusPending
	b.asyncSeq++
	seq := b.asyncSeq
	b.activeAsync = seq

	path := b.path()
	validate := b.asyncValidator
	timeout := b.tree().asyncTimeout
	spans := b.tree().spans
	observability.LogAsyncValidationStart(b.tree().logger, path, seq)

	// The validator reads from a snapshot captured under the lock, never
	// from the live control: each run validates the state it was started
	// for, and its reads cannot race against concurrent edits.
	snap := b.self.snapshot(newTree())

	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		sctx, span := spans.StartAsyncValidationSpan(ctx, path)
		errs, err := validate(sctx, snap)
		spans.EndSpanWithError(span, err)
		elapsed := time.Since(start)

		finish := b.begin()
		defer finish()

		t := b.tree()
		t.metrics.RecordAsyncValidation(context.Background(), path, elapsed, err)
		observability.LogAsyncValidationResult(t.logger, path, seq, seq != b.activeAsync,
			float64(elapsed.Microseconds())/1000.0)

		if err != nil {
			observability.LogAsyncValidationError(t.logger, path, err)
			errs = Errors{ErrorCodeAsync: err.Error()}
		}
		b.setErrors(errs, changeOpts{emit: emit})
	}()
}
