// Package binding connects formtree controls to UI input events.
//
// The package models the input side of a rendered form: value coercion
// from native input elements, per-field adapters that translate input
// and blur events into control mutations according to the control's
// update strategy, and a form-level adapter that routes events by path
// and drives submission.
package binding

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/formtree/pkg/formtree"
	"github.com/randalmurphal/formtree/pkg/formtree/registry"
)

var (
	// ErrControlNotFound reports a path that resolves to no control.
	ErrControlNotFound = errors.New("binding: control not found")

	// ErrNotAField reports a path that resolves to a composite control.
	ErrNotAField = errors.New("binding: control is not a field")
)

// SelectOption is one option of a select element.
type SelectOption struct {
	Value    string
	Selected bool
}

// Target carries the state of the input element that fired an event.
type Target struct {
	Type    string
	Value   string
	Checked bool
	Options []SelectOption
}

// InputEvent is a value-bearing event from an input element.
type InputEvent struct {
	Target Target
}

// CoerceValue extracts the control-facing value from an input target.
// Checkboxes yield their checked state, multi-selects the selected
// option values, everything else the raw string value.
func CoerceValue(t Target) any {
	switch t.Type {
	case "checkbox":
		return t.Checked
	case "select-multiple":
		selected := make([]string, 0, len(t.Options))
		for _, opt := range t.Options {
			if opt.Selected {
				selected = append(selected, opt.Value)
			}
		}
		return selected
	default:
		return t.Value
	}
}

// FieldAdapter translates input events into mutations of one field,
// honoring the field's update strategy.
type FieldAdapter struct {
	field *formtree.Field

	// pendingChange tracks whether an input arrived since the last
	// commit for blur and submit strategies.
	pendingChange bool
	pendingDirty  bool
}

// NewFieldAdapter binds an adapter to a field.
func NewFieldAdapter(f *formtree.Field) *FieldAdapter {
	return &FieldAdapter{field: f}
}

// Field returns the bound control.
func (a *FieldAdapter) Field() *formtree.Field { return a.field }

// HandleInput applies an input event. With the change strategy the
// value is written and validated immediately; with blur or submit it is
// staged until the corresponding trigger.
func (a *FieldAdapter) HandleInput(ev InputEvent) {
	value := CoerceValue(ev.Target)
	if a.field.UpdateOn() == formtree.UpdateOnChange {
		a.field.MarkAsDirty()
		a.field.SetValue(value)
		return
	}
	a.field.SetPendingValue(value)
	a.pendingChange = true
	a.pendingDirty = true
}

// HandleBlur applies a blur event. With the blur strategy any staged
// value is committed first; the field is then marked touched and a view
// refresh is requested on the first blur.
func (a *FieldAdapter) HandleBlur() {
	if a.field.UpdateOn() == formtree.UpdateOnBlur && a.pendingChange {
		if a.pendingDirty {
			a.field.MarkAsDirty()
			a.pendingDirty = false
		}
		a.field.CommitPendingValue()
		a.pendingChange = false
	}
	if !a.field.Touched() {
		a.field.MarkAsTouched()
		a.field.RequestViewRefresh()
	}
}

// commit flushes a staged value regardless of strategy. Used at submit
// time for submit-strategy fields.
func (a *FieldAdapter) commit() {
	if !a.pendingChange {
		return
	}
	if a.pendingDirty {
		a.field.MarkAsDirty()
		a.pendingDirty = false
	}
	a.field.CommitPendingValue()
	a.pendingChange = false
}

// FormAdapter routes input events to field adapters by dotted path and
// drives form submission.
type FormAdapter struct {
	root     formtree.Control
	adapters *registry.Registry[string, *FieldAdapter]
}

// NewFormAdapter creates an adapter rooted at a control tree.
func NewFormAdapter(root formtree.Control) *FormAdapter {
	return &FormAdapter{
		root:     root,
		adapters: registry.New[string, *FieldAdapter](),
	}
}

// Register binds the field at path and returns its adapter. Registering
// the same path twice returns the original adapter.
func (f *FormAdapter) Register(path string) (*FieldAdapter, error) {
	if a, ok := f.adapters.Get(path); ok {
		return a, nil
	}
	c := f.root.Get(path)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrControlNotFound, path)
	}
	field, ok := c.(*formtree.Field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAField, path)
	}
	a := NewFieldAdapter(field)
	f.adapters.Register(path, a)
	return a, nil
}

// Field returns the adapter registered at path.
func (f *FormAdapter) Field(path string) (*FieldAdapter, bool) {
	return f.adapters.Get(path)
}

// Submit commits every staged submit-strategy value and requests a view
// refresh. Returns whether the tree is valid after the commits.
func (f *FormAdapter) Submit() bool {
	for _, path := range f.adapters.Keys() {
		a, ok := f.adapters.Get(path)
		if !ok {
			continue
		}
		if a.field.UpdateOn() == formtree.UpdateOnSubmit {
			a.commit()
		}
	}
	f.root.RequestViewRefresh()
	return f.root.Valid()
}
