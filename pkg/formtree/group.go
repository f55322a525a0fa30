package formtree

import (
	"fmt"
	"slices"
	"strings"
)

// Group is a composite control holding named child controls. Child keys
// are unique; insertion order defines iteration order for aggregation.
//
// A child's presence in the group's mapping is the only structural
// ownership in the tree - the child's parent reference is a back-pointer
// for upward walks, set exactly once by Add.
//
// Build a group by chaining Add calls, then attach it or use it directly:
//
//	form := formtree.NewGroup().
//	    Add("name", formtree.NewField("", formtree.WithValidators(validator.Required()))).
//	    Add("age", formtree.NewField(nil))
type Group struct {
	controlBase

	order    []string
	children map[string]Control
}

// Compile-time interface check.
var _ Control = (*Group)(nil)

// NewGroup creates an empty composite control. An empty group reports
// DISABLED only when explicitly disabled, never by vacuous aggregation.
func NewGroup(opts ...Option) *Group {
	g := &Group{children: make(map[string]Control)}
	g.init(g, opts)

	finish := g.begin()
	defer finish()
	g.updateValueAndValidity(changeOpts{onlySelf: true, emit: false})
	return g
}

// Add attaches a child under key and revalidates the group and its
// ancestors. Returns the group for chaining.
//
// Panics if:
//   - key is empty or contains the path separator "."
//   - child is nil
//   - key already exists in the group
//   - child is already attached to a parent
func (g *Group) Add(key string, child Control) *Group {
	if key == "" {
		panic("formtree: child key cannot be empty")
	}
	if strings.Contains(key, pathSeparator) {
		panic("formtree: child key cannot contain '.'")
	}
	if child == nil {
		panic("formtree: child control cannot be nil")
	}

	finish := g.begin()
	defer finish()

	if _, exists := g.children[key]; exists {
		panic(fmt.Sprintf("formtree: duplicate child key: %s", key))
	}
	if child.base().parent != nil {
		panic(fmt.Sprintf("formtree: control already attached, cannot add as %q", key))
	}

	g.children[key] = child
	g.order = append(g.order, key)
	child.base().setParent(g)
	g.updateValueAndValidity(changeOpts{emit: true})
	return g
}

// Contains reports whether a child exists under key AND is enabled. Use
// Get for raw lookup that ignores enabled-ness.
func (g *Group) Contains(key string) bool {
	c, ok := g.children[key]
	return ok && c.Enabled()
}

// Keys returns the child keys in insertion order.
func (g *Group) Keys() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of children.
func (g *Group) Len() int {
	return len(g.order)
}

// RawValue returns the aggregate value of all children regardless of
// enabled-ness, recursing into nested groups.
func (g *Group) RawValue() map[string]any {
	out := make(map[string]any, len(g.order))
	for _, key := range g.order {
		if child, ok := g.children[key].(*Group); ok {
			out[key] = child.RawValue()
		} else {
			out[key] = g.children[key].Value()
		}
	}
	return out
}

// ChildErrors aggregates, on demand, each enabled child's own errors.
// Children without errors are omitted. This is a view, not stored state -
// aggregate invalidity is carried by Status.
func (g *Group) ChildErrors() map[string]Errors {
	out := make(map[string]Errors)
	for _, key := range g.order {
		c := g.children[key]
		if c.Enabled() && c.Errors() != nil {
			out[key] = c.Errors()
		}
	}
	return out
}

// reset implements the Reset hook: recurse into every child with its
// keyed value (nil when absent), each scoped to itself, then perform one
// group-level revalidate and flag refresh.
func (g *Group) reset(state any, o changeOpts) {
	values, _ := state.(map[string]any)
	for _, key := range g.order {
		var childState any
		if values != nil {
			childState = values[key]
		}
		g.children[key].reset(childState, changeOpts{onlySelf: true, emit: o.emit})
	}
	g.updateValueAndValidity(o)
	g.updatePristine(o)
	g.updateTouched(o)
}

// Variant hooks.

func (g *Group) base() *controlBase { return &g.controlBase }

// refreshValue recomputes the aggregate value: enabled children only,
// or every child when the group itself is disabled.
func (g *Group) refreshValue() {
	out := make(map[string]any, len(g.order))
	for _, key := range g.order {
		c := g.children[key]
		if c.Enabled() || g.Disabled() {
			out[key] = c.Value()
		}
	}
	g.value = out
}

func (g *Group) forEachChild(fn func(c Control)) {
	for _, key := range g.order {
		fn(g.children[key])
	}
}

// anyControls applies pred to enabled children only; disabled subtrees
// are excluded from aggregation without being removed from the structure.
func (g *Group) anyControls(pred func(c Control) bool) bool {
	for _, key := range g.order {
		c := g.children[key]
		if c.Enabled() && pred(c) {
			return true
		}
	}
	return false
}

func (g *Group) allControlsDisabled() bool {
	for _, key := range g.order {
		if g.children[key].Enabled() {
			return false
		}
	}
	return len(g.order) > 0 || g.status == StatusDisabled
}

func (g *Group) childNamed(key string) Control {
	return g.children[key]
}

// snapshot copies the whole subtree so a validator can still navigate it
// with Get. Every copy in one run shares a single detached tree.
func (g *Group) snapshot(t *tree) Control {
	s := &Group{
		order:    slices.Clone(g.order),
		children: make(map[string]Control, len(g.order)),
	}
	g.snapshotBase(&s.controlBase, s, t)
	for _, key := range g.order {
		c := g.children[key].snapshot(t)
		c.base().parent = s
		s.children[key] = c
	}
	return s
}

// keyOf returns the key a child is registered under, for path rendering.
func (g *Group) keyOf(c Control) string {
	for _, key := range g.order {
		if g.children[key] == c {
			return key
		}
	}
	return ""
}
