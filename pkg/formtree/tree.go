package formtree

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/formtree/pkg/formtree/observability"
)

// tree holds state shared by every control in one form tree: the mutation
// lock, the deferred notification queue, and the tree-wide services
// (logger, metrics, spans, settings).
//
// Each control is created with its own tree; attaching a child to a Group
// makes the whole child subtree adopt the parent's tree, so a finished
// form shares exactly one. Configure services on the root control.
type tree struct {
	mu sync.Mutex

	// emits collects notification closures during a locked mutation walk.
	// They run after the lock is released, before the mutating call
	// returns, so stream handlers may safely re-enter the tree.
	emits []func()

	// refreshQueued dedupes the root view-refresh signal to one emission
	// per mutation episode.
	refreshQueued bool

	formID          string
	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	defaultUpdateOn UpdateOn
	asyncTimeout    time.Duration
}

func newTree() *tree {
	return &tree{
		formID:  fmt.Sprintf("form-%s", uuid.New().String()[:8]),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// queue defers a notification until the current mutation episode ends.
// Must be called with mu held.
func (t *tree) queue(fn func()) {
	t.emits = append(t.emits, fn)
}

// tree returns the control's current shared tree handle.
func (b *controlBase) tree() *tree {
	return b.treeRef.Load()
}

// begin locks the tree for a mutation episode. The returned function ends
// the episode: it releases the lock and then delivers every queued
// notification on the calling goroutine.
//
// The handle is re-read after acquiring the lock: Group.Add may have
// rebound the control to the parent's tree in the meantime, and the
// episode must hold the lock of the tree the control belongs to now.
func (b *controlBase) begin() func() {
	t := b.treeRef.Load()
	for {
		t.mu.Lock()
		cur := b.treeRef.Load()
		if cur == t {
			break
		}
		t.mu.Unlock()
		t = cur
	}
	return func() {
		emits := t.emits
		t.emits = nil
		t.refreshQueued = false
		t.mu.Unlock()
		for _, fn := range emits {
			fn()
		}
	}
}
