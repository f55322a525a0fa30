package formtree

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/formtree/pkg/formtree/observability"
	"github.com/randalmurphal/formtree/pkg/formtree/stream"
)

// ValidatorFunc checks a control synchronously and returns its validation
// errors, or nil when the control is acceptable. Validators must be pure:
// no side effects, no mutation of the tree.
type ValidatorFunc func(c Control) Errors

// AsyncValidatorFunc checks a control against an external source (a
// uniqueness probe, a remote lookup). A non-nil error is a failed probe,
// not a validation verdict; the engine logs it and surfaces it on the
// control under ErrorCodeAsync.
//
// The control handed to the validator is a detached snapshot of the
// subtree, captured when the run starts. Its value, errors, and flags are
// fixed for the life of the run and may be read from the validator's
// goroutine without racing against concurrent edits to the live tree.
//
// The context carries the tree's configured async timeout, if any.
type AsyncValidatorFunc func(ctx context.Context, c Control) (Errors, error)

// Control is a node in the form-state tree: either a *Field (leaf) or a
// *Group (named composite). The variant set is closed; external packages
// consume Control but cannot implement it.
//
// All mutating methods accept call modifiers: OnlySelf() suppresses the
// ancestor walk, WithoutEvents() suppresses notification emission.
type Control interface {
	// Value returns the control's current value. For a Group this is the
	// aggregate map of enabled children (or of all children when the
	// group itself is disabled).
	Value() any

	// Status returns the control's current status.
	Status() Status

	// Errors returns the control's own sync-validator result, or nil.
	Errors() Errors

	// Status predicates.
	Valid() bool
	Invalid() bool
	Pending() bool
	Enabled() bool
	Disabled() bool

	// Interaction flags. Dirty is the negation of Pristine; Untouched the
	// negation of Touched.
	Touched() bool
	Untouched() bool
	Dirty() bool
	Pristine() bool

	// Parent returns the owning Group, or nil for a root.
	Parent() Control

	// Root returns the top of the tree (the control itself if detached).
	Root() Control

	// UpdateOn returns the control's update strategy, inherited from the
	// parent when unset, defaulting to UpdateOnChange at the root.
	UpdateOn() UpdateOn

	// SetValidators replaces the control's sync validators. It does not
	// revalidate; call UpdateValueAndValidity to apply.
	SetValidators(fns ...ValidatorFunc)

	// SetAsyncValidators replaces the control's async validators.
	SetAsyncValidators(fns ...AsyncValidatorFunc)

	// UpdateValueAndValidity recomputes the control's value and status
	// and, unless scoped with OnlySelf, every ancestor's up to the root.
	UpdateValueAndValidity(opts ...ChangeOption)

	// Disable forces the control and all its descendants to DISABLED,
	// clears the control's own errors, and refreshes the ancestor chain.
	Disable(opts ...ChangeOption)

	// Enable re-includes the control in aggregation and revalidates it
	// and the ancestor chain.
	Enable(opts ...ChangeOption)

	// MarkAsTouched sets the touched flag on the control and, unless
	// scoped, force-sets it on every ancestor.
	MarkAsTouched(opts ...ChangeOption)

	// MarkAsUntouched clears touched on the control and every descendant,
	// then has the ancestor chain recompute its flag by aggregation.
	MarkAsUntouched(opts ...ChangeOption)

	// MarkAsDirty clears pristine on the control and, unless scoped,
	// force-sets dirty on every ancestor.
	MarkAsDirty(opts ...ChangeOption)

	// MarkAsPristine sets pristine on the control and every descendant,
	// then has the ancestor chain recompute its flag by aggregation.
	MarkAsPristine(opts ...ChangeOption)

	// SetErrors replaces the control's own errors and recomputes status
	// on the control and every ancestor up to the root.
	SetErrors(errs Errors, opts ...ChangeOption)

	// Reset reapplies an initial state, forces pristine and untouched,
	// and revalidates. A *Field accepts a bare value or a State box; a
	// *Group accepts a map[string]any of child values (or nil).
	Reset(state any, opts ...ChangeOption)

	// Get resolves a descendant by path. Each path element may itself be
	// a dot-delimited string. Returns nil for an empty path, an unknown
	// key, or a walk through a leaf.
	Get(path ...string) Control

	// GetError returns the error detail for code on the control at path
	// (the control itself when path is empty), or nil.
	GetError(code string, path ...string) any

	// HasError reports whether GetError returns a non-nil detail.
	HasError(code string, path ...string) bool

	// ValueChanges is the control's value-changed notification stream.
	ValueChanges() *stream.Stream[any]

	// StatusChanges is the control's status-changed notification stream.
	StatusChanges() *stream.Stream[Status]

	// ViewRefreshes is the view-refresh stream. It only fires on the
	// control that is the tree root at emission time, at most once per
	// mutation episode.
	ViewRefreshes() *stream.Stream[struct{}]

	// RequestViewRefresh queues a view-refresh emission on the root.
	RequestViewRefresh()

	// OnDisabledChange registers a callback invoked with the new disabled
	// state on every Disable/Enable transition of this control.
	OnDisabledChange(fn func(disabled bool))

	// Variant hooks. Unexported so the variant set stays closed.
	base() *controlBase
	refreshValue()
	forEachChild(fn func(c Control))
	anyControls(pred func(c Control) bool) bool
	allControlsDisabled() bool
	childNamed(key string) Control
	reset(state any, o changeOpts)
	snapshot(t *tree) Control
}

// changeOpts carries the scoping flags of a mutating call.
type changeOpts struct {
	onlySelf bool
	emit     bool
}

// ChangeOption modifies the scope of a mutating call.
type ChangeOption func(*changeOpts)

// OnlySelf restricts a mutation to the receiving control, suppressing the
// ancestor walk.
func OnlySelf() ChangeOption {
	return func(o *changeOpts) {
		o.onlySelf = true
	}
}

// WithoutEvents suppresses value-changed, status-changed, and view-refresh
// emissions for the mutation.
func WithoutEvents() ChangeOption {
	return func(o *changeOpts) {
		o.emit = false
	}
}

func applyChangeOpts(opts []ChangeOption) changeOpts {
	o := changeOpts{emit: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// controlBase holds the state and protocol shared by Field and Group.
// Variant-specific behavior is reached through the self back-pointer and
// the unexported Control hooks.
type controlBase struct {
	self Control

	// treeRef is the control's shared tree handle. It is atomic because
	// Group.Add rebinds a whole subtree under the parent's lock while an
	// async resolution goroutine may be about to lock through the old
	// handle; begin re-checks the pointer after acquiring the lock.
	treeRef atomic.Pointer[tree]

	value    any
	status   Status
	errs     Errors
	touched  bool
	pristine bool
	parent   Control
	updateOn UpdateOn

	validator      ValidatorFunc
	asyncValidator AsyncValidatorFunc

	// asyncSeq numbers async validation runs; activeAsync is the
	// bookkeeping handle for the latest. Starting a new run supersedes
	// the handle only - earlier runs stay live and their resolutions are
	// still applied (last resolution wins, see package docs).
	asyncSeq    int
	activeAsync int

	valueChanges     *stream.Stream[any]
	statusChanges    *stream.Stream[Status]
	viewRefreshes    *stream.Stream[struct{}]
	onDisabledChange []func(bool)
}

func (b *controlBase) init(self Control, opts []Option) {
	b.self = self
	b.status = StatusValid
	b.pristine = true
	b.treeRef.Store(newTree())
	b.valueChanges = stream.New[any]()
	b.statusChanges = stream.New[Status]()
	b.viewRefreshes = stream.New[struct{}]()
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
}

// Getters. These are plain field reads; see the package docs for the
// goroutine-confinement contract.

// Value returns the control's current value.
func (b *controlBase) Value() any { return b.value }

// Status returns the control's current status.
func (b *controlBase) Status() Status { return b.status }

// Errors returns the control's own sync-validator result, or nil.
func (b *controlBase) Errors() Errors { return b.errs }

// Valid reports status == VALID.
func (b *controlBase) Valid() bool { return b.status == StatusValid }

// Invalid reports status == INVALID.
func (b *controlBase) Invalid() bool { return b.status == StatusInvalid }

// Pending reports status == PENDING.
func (b *controlBase) Pending() bool { return b.status == StatusPending }

// Enabled reports status != DISABLED.
func (b *controlBase) Enabled() bool { return b.status != StatusDisabled }

// Disabled reports status == DISABLED.
func (b *controlBase) Disabled() bool { return b.status == StatusDisabled }

// Touched reports whether the control has received a blur-equivalent
// interaction.
func (b *controlBase) Touched() bool { return b.touched }

// Untouched is the negation of Touched.
func (b *controlBase) Untouched() bool { return !b.touched }

// Pristine reports whether the control's value has never been changed by
// user interaction.
func (b *controlBase) Pristine() bool { return b.pristine }

// Dirty is the negation of Pristine.
func (b *controlBase) Dirty() bool { return !b.pristine }

// Parent returns the owning Group, or nil for a root.
func (b *controlBase) Parent() Control { return b.parent }

// Root returns the top of the tree.
func (b *controlBase) Root() Control {
	cur := b.self
	for cur.base().parent != nil {
		cur = cur.base().parent
	}
	return cur
}

// UpdateOn resolves the control's update strategy by parent inheritance.
func (b *controlBase) UpdateOn() UpdateOn {
	if b.updateOn != UpdateOnDefault {
		return b.updateOn
	}
	if b.parent != nil {
		return b.parent.UpdateOn()
	}
	if b.tree().defaultUpdateOn != UpdateOnDefault {
		return b.tree().defaultUpdateOn
	}
	return UpdateOnChange
}

// ValueChanges is the control's value-changed stream.
func (b *controlBase) ValueChanges() *stream.Stream[any] { return b.valueChanges }

// StatusChanges is the control's status-changed stream.
func (b *controlBase) StatusChanges() *stream.Stream[Status] { return b.statusChanges }

// ViewRefreshes is the control's view-refresh stream.
func (b *controlBase) ViewRefreshes() *stream.Stream[struct{}] { return b.viewRefreshes }

// Mutators. Each exported method is an entry point: it locks the tree,
// performs the walk, then delivers queued notifications before returning.

// SetValidators replaces the control's sync validators without
// revalidating.
func (b *controlBase) SetValidators(fns ...ValidatorFunc) {
	finish := b.begin()
	defer finish()
	b.validator = Compose(fns...)
}

// SetAsyncValidators replaces the control's async validators without
// revalidating.
func (b *controlBase) SetAsyncValidators(fns ...AsyncValidatorFunc) {
	finish := b.begin()
	defer finish()
	b.asyncValidator = ComposeAsync(fns...)
}

// traceValidation brackets one revalidating entry point with a validation
// span. Every exported mutator that can rerun validators goes through it,
// so trace coverage does not depend on which mutator the caller used.
func (b *controlBase) traceValidation(fn func()) {
	spans := b.tree().spans
	_, span := spans.StartValidationSpan(context.Background(), b.path())
	fn()
	spans.EndSpanWithError(span, nil)
}

// UpdateValueAndValidity recomputes the control's value and status and,
// unless scoped with OnlySelf, every ancestor's up to the root.
func (b *controlBase) UpdateValueAndValidity(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	b.traceValidation(func() {
		finish := b.begin()
		defer finish()
		b.updateValueAndValidity(o)
	})
}

// Disable forces the control and its descendants to DISABLED.
func (b *controlBase) Disable(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	b.traceValidation(func() {
		finish := b.begin()
		defer finish()
		b.disable(o)
	})
}

// Enable re-includes the control in aggregation and revalidates.
func (b *controlBase) Enable(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	b.traceValidation(func() {
		finish := b.begin()
		defer finish()
		b.enable(o)
	})
}

// MarkAsTouched sets touched on the control and force-sets it up the
// ancestor chain.
func (b *controlBase) MarkAsTouched(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	finish := b.begin()
	defer finish()
	b.markAsTouched(o)
}

// MarkAsUntouched clears touched downward by fiat, then lets ancestors
// recompute by aggregation.
func (b *controlBase) MarkAsUntouched(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	finish := b.begin()
	defer finish()
	b.markAsUntouched(o)
}

// MarkAsDirty clears pristine on the control and force-sets dirty up the
// ancestor chain.
func (b *controlBase) MarkAsDirty(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	finish := b.begin()
	defer finish()
	b.markAsDirty(o)
}

// MarkAsPristine sets pristine downward by fiat, then lets ancestors
// recompute by aggregation.
func (b *controlBase) MarkAsPristine(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	finish := b.begin()
	defer finish()
	b.markAsPristine(o)
}

// SetErrors replaces the control's own errors and walks to the root
// recomputing every ancestor's status.
func (b *controlBase) SetErrors(errs Errors, opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	finish := b.begin()
	defer finish()
	b.setErrors(errs, o)
}

// Reset reapplies an initial state. Variant behavior is in the reset hook.
func (b *controlBase) Reset(state any, opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	b.traceValidation(func() {
		finish := b.begin()
		defer finish()
		b.self.reset(state, o)
	})
}

// RequestViewRefresh queues a view-refresh emission on the root.
func (b *controlBase) RequestViewRefresh() {
	finish := b.begin()
	defer finish()
	b.Root().base().queueViewRefresh()
}

// OnDisabledChange registers a disabled-transition callback.
func (b *controlBase) OnDisabledChange(fn func(disabled bool)) {
	if fn == nil {
		return
	}
	finish := b.begin()
	defer finish()
	b.onDisabledChange = append(b.onDisabledChange, fn)
}

// Internal walk logic. Every method below assumes the tree lock is held
// and reaches other nodes only through unexported methods.

// updateValueAndValidity is the single revalidation step: recompute own
// value, rerun the sync validator if enabled, derive status, kick off the
// async validator, emit, and recurse to the parent unless scoped.
func (b *controlBase) updateValueAndValidity(o changeOpts) {
	start := time.Now()
	prev := b.status

	b.setInitialStatus()
	b.self.refreshValue()

	if b.status != StatusDisabled {
		b.errs = normalizeErrors(b.runValidator())
		b.status = b.calcStatus()
		if b.status == StatusValid || b.status == StatusPending {
			b.runAsyncValidator(o.emit)
		}
	}

	if o.emit {
		b.queueValueEmit()
		b.queueStatusEmit()
		b.queueViewRefresh()
	}

	b.observeValidation(prev, time.Since(start))

	if b.parent != nil && !o.onlySelf {
		b.parent.base().updateValueAndValidity(o)
	}
}

// setInitialStatus resets status from the disabled state alone, before
// validators run.
func (b *controlBase) setInitialStatus() {
	if b.self.allControlsDisabled() {
		b.status = StatusDisabled
	} else {
		b.status = StatusValid
	}
}

func (b *controlBase) runValidator() Errors {
	if b.validator == nil {
		return nil
	}
	return b.validator(b.self)
}

// calcStatus derives status in fixed precedence: disabled subtree, own
// errors, pending child, invalid child, valid.
func (b *controlBase) calcStatus() Status {
	switch {
	case b.self.allControlsDisabled():
		return StatusDisabled
	case len(b.errs) > 0:
		return StatusInvalid
	case b.anyControlsHaveStatus(StatusPending):
		return StatusPending
	case b.anyControlsHaveStatus(StatusInvalid):
		return StatusInvalid
	default:
		return StatusValid
	}
}

func (b *controlBase) anyControlsHaveStatus(s Status) bool {
	return b.self.anyControls(func(c Control) bool { return c.Status() == s })
}

func (b *controlBase) anyControlsDirty() bool {
	return b.self.anyControls(func(c Control) bool { return c.Dirty() })
}

func (b *controlBase) anyControlsTouched() bool {
	return b.self.anyControls(func(c Control) bool { return c.Touched() })
}

// setErrors stores the control's own errors and propagates the status
// recomputation to the root.
func (b *controlBase) setErrors(errs Errors, o changeOpts) {
	b.errs = normalizeErrors(errs)
	b.updateControlsErrors(o.emit)
}

// updateControlsErrors recomputes status at this level and recurses
// upward unconditionally - error injection always reaches the root.
func (b *controlBase) updateControlsErrors(emit bool) {
	prev := b.status
	b.status = b.calcStatus()

	if emit {
		b.queueStatusEmit()
		b.queueViewRefresh()
	}
	if prev != b.status {
		b.tree().metrics.RecordStatusTransition(context.Background(), b.path(), string(prev), string(b.status))
		observability.LogStatusTransition(b.tree().logger, b.path(), string(prev), string(b.status))
	}

	if b.parent != nil {
		b.parent.base().updateControlsErrors(emit)
	}
}

// disable forces DISABLED on the control and every descendant, clears own
// errors, recomputes own value, then refreshes the ancestor chain.
func (b *controlBase) disable(o changeOpts) {
	b.status = StatusDisabled
	b.errs = nil
	b.self.forEachChild(func(c Control) {
		c.base().disable(changeOpts{onlySelf: true, emit: o.emit})
	})
	b.self.refreshValue()

	if o.emit {
		b.queueValueEmit()
		b.queueStatusEmit()
		b.queueViewRefresh()
	}

	b.updateAncestors(o)
	b.notifyDisabledChange(true)
}

// enable lifts DISABLED from the control and every descendant and
// revalidates before refreshing the ancestor chain.
func (b *controlBase) enable(o changeOpts) {
	b.status = StatusValid
	b.self.forEachChild(func(c Control) {
		c.base().enable(changeOpts{onlySelf: true, emit: o.emit})
	})
	b.updateValueAndValidity(changeOpts{onlySelf: true, emit: o.emit})

	b.updateAncestors(o)
	b.notifyDisabledChange(false)
}

// updateAncestors performs the combined ancestor refresh after an
// enable/disable transition: validity, pristine aggregate, and touched
// aggregate in one pass.
func (b *controlBase) updateAncestors(o changeOpts) {
	if b.parent == nil || o.onlySelf {
		return
	}
	p := b.parent.base()
	p.updateValueAndValidity(o)
	p.updatePristine(changeOpts{emit: o.emit})
	p.updateTouched(changeOpts{emit: o.emit})
}

func (b *controlBase) markAsTouched(o changeOpts) {
	b.touched = true
	if b.parent != nil && !o.onlySelf {
		b.parent.base().markAsTouched(o)
	}
}

func (b *controlBase) markAsUntouched(o changeOpts) {
	b.touched = false
	b.self.forEachChild(func(c Control) {
		c.base().markAsUntouched(changeOpts{onlySelf: true})
	})
	if b.parent != nil && !o.onlySelf {
		b.parent.base().updateTouched(o)
	}
}

func (b *controlBase) markAsDirty(o changeOpts) {
	b.pristine = false
	if b.parent != nil && !o.onlySelf {
		b.parent.base().markAsDirty(o)
	}
}

func (b *controlBase) markAsPristine(o changeOpts) {
	b.pristine = true
	b.self.forEachChild(func(c Control) {
		c.base().markAsPristine(changeOpts{onlySelf: true})
	})
	if b.parent != nil && !o.onlySelf {
		b.parent.base().updatePristine(o)
	}
}

// updateTouched recomputes touched by aggregation: some descendant
// touched. This is the upward half of the mark asymmetry - never a
// force-set.
func (b *controlBase) updateTouched(o changeOpts) {
	b.touched = b.anyControlsTouched()
	if b.parent != nil && !o.onlySelf {
		b.parent.base().updateTouched(o)
	}
}

// updatePristine recomputes pristine by aggregation: no descendant dirty.
func (b *controlBase) updatePristine(o changeOpts) {
	b.pristine = !b.anyControlsDirty()
	if b.parent != nil && !o.onlySelf {
		b.parent.base().updatePristine(o)
	}
}

// setParent attaches the control to its owning Group. Called exactly once
// per control, by Group.Add.
func (b *controlBase) setParent(p Control) {
	b.parent = p
	b.adoptTree(p.base().tree())
}

func (b *controlBase) adoptTree(t *tree) {
	b.treeRef.Store(t)
	b.self.forEachChild(func(c Control) {
		c.base().adoptTree(t)
	})
}

// snapshotBase fills dst with a detached copy of the control's observable
// state for an async validation run: no validators, no parent link (the
// variant snapshot hooks restore it within the copy), inert services. The
// update strategy is resolved to its effective value so the copy answers
// UpdateOn without consulting a parent. Must be called with the tree lock
// held.
func (b *controlBase) snapshotBase(dst *controlBase, self Control, t *tree) {
	dst.self = self
	dst.treeRef.Store(t)
	dst.value = b.value
	dst.status = b.status
	dst.errs = b.errs
	dst.touched = b.touched
	dst.pristine = b.pristine
	dst.updateOn = b.UpdateOn()
	dst.valueChanges = stream.New[any]()
	dst.statusChanges = stream.New[Status]()
	dst.viewRefreshes = stream.New[struct{}]()
}

// Notification queueing. Values are captured at queue time; delivery
// happens when the mutation episode ends.

func (b *controlBase) queueValueEmit() {
	v := b.value
	s := b.valueChanges
	b.tree().queue(func() { s.Emit(v) })
}

func (b *controlBase) queueStatusEmit() {
	st := b.status
	s := b.statusChanges
	b.tree().queue(func() { s.Emit(st) })
}

// queueViewRefresh queues the root view-refresh signal. Only the control
// that is root at call time emits, and only once per mutation episode.
func (b *controlBase) queueViewRefresh() {
	if b.parent != nil || b.tree().refreshQueued {
		return
	}
	b.tree().refreshQueued = true
	s := b.viewRefreshes
	b.tree().queue(func() { s.Emit(struct{}{}) })
}

func (b *controlBase) notifyDisabledChange(disabled bool) {
	if len(b.onDisabledChange) == 0 {
		return
	}
	cbs := slices.Clone(b.onDisabledChange)
	b.tree().queue(func() {
		for _, fn := range cbs {
			fn(disabled)
		}
	})
}

func (b *controlBase) observeValidation(prev Status, elapsed time.Duration) {
	t := b.tree()
	path := b.path()
	observability.LogValidation(t.logger, t.formID, path, string(b.status), float64(elapsed.Microseconds())/1000.0)
	t.metrics.RecordValidation(context.Background(), path, string(b.status), elapsed)
	if prev != b.status {
		t.metrics.RecordStatusTransition(context.Background(), path, string(prev), string(b.status))
		observability.LogStatusTransition(t.logger, path, string(prev), string(b.status))
	}
}

func normalizeErrors(errs Errors) Errors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
