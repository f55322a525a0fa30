package formtree

// State is the boxed construction form for a Field: an initial value plus
// an initial disabled flag.
type State struct {
	Value    any
	Disabled bool
}

// Field is a leaf control holding a single opaque value.
//
// Besides its committed value, a Field carries a pending-value mirror for
// the input-binding layer: a staged value that has been typed but not yet
// applied under a blur or submit update strategy. SetValue assigns both.
type Field struct {
	controlBase

	pendingValue any
}

// Compile-time interface check.
var _ Control = (*Field)(nil)

// NewField creates a leaf control. The state argument is either a bare
// initial value or a State box carrying an initial disabled flag. The
// control is revalidated immediately with no events, so its fields are
// consistent before attachment.
//
// Example:
//
//	name := formtree.NewField("", formtree.WithValidators(validator.Required()))
//	legacy := formtree.NewField(formtree.State{Value: "n/a", Disabled: true})
func NewField(state any, opts ...Option) *Field {
	f := &Field{}
	f.init(f, opts)

	finish := f.begin()
	defer finish()
	f.applyState(state)
	f.updateValueAndValidity(changeOpts{onlySelf: true, emit: false})
	return f
}

// SetValue assigns the value and the pending-value mirror, then
// revalidates the control and its ancestor chain.
func (f *Field) SetValue(value any, opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	f.traceValidation(func() {
		finish := f.begin()
		defer finish()
		f.setValue(value, o)
	})
}

// PendingValue returns the staged value from the input-binding layer.
func (f *Field) PendingValue() any {
	return f.pendingValue
}

// SetPendingValue stages a value without applying it. Used by the binding
// layer when the control's update strategy is blur or submit.
func (f *Field) SetPendingValue(value any) {
	finish := f.begin()
	defer finish()
	f.pendingValue = value
}

// CommitPendingValue applies the staged value as if SetValue had been
// called with it.
func (f *Field) CommitPendingValue(opts ...ChangeOption) {
	o := applyChangeOpts(opts)
	f.traceValidation(func() {
		finish := f.begin()
		defer finish()
		f.setValue(f.pendingValue, o)
	})
}

func (f *Field) setValue(value any, o changeOpts) {
	f.value = value
	f.pendingValue = value
	f.updateValueAndValidity(o)
}

// applyState interprets a boxed-or-bare construction state. The disabled
// branch goes through disable/enable with no events, so construction and
// reset are never externally observable mid-state.
func (f *Field) applyState(state any) {
	boxed, ok := state.(State)
	if !ok {
		if p, pok := state.(*State); pok && p != nil {
			boxed, ok = *p, true
		}
	}
	if !ok {
		f.value = state
		f.pendingValue = state
		return
	}

	f.value = boxed.Value
	f.pendingValue = boxed.Value
	if boxed.Disabled {
		f.disable(changeOpts{onlySelf: true, emit: false})
	} else {
		f.enable(changeOpts{onlySelf: true, emit: false})
	}
}

// reset implements the Reset hook: reapply the boxed-or-bare state, force
// pristine and untouched, and revalidate.
func (f *Field) reset(state any, o changeOpts) {
	f.applyState(state)
	f.markAsPristine(o)
	f.markAsUntouched(o)
	f.setValue(f.value, o)
}

// Variant hooks.

func (f *Field) base() *controlBase { return &f.controlBase }

// refreshValue is a no-op: a leaf's value is assigned directly.
func (f *Field) refreshValue() {}

func (f *Field) forEachChild(func(c Control)) {}

func (f *Field) anyControls(func(c Control) bool) bool { return false }

func (f *Field) allControlsDisabled() bool { return f.status == StatusDisabled }

func (f *Field) childNamed(string) Control { return nil }

func (f *Field) snapshot(t *tree) Control {
	s := &Field{pendingValue: f.pendingValue}
	f.snapshotBase(&s.controlBase, s, t)
	return s
}
