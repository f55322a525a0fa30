package formtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressForm() *Group {
	return NewGroup().
		Add("street", NewField("")).
		Add("city", NewField("Springfield")).
		Add("zip", NewField("", WithValidators(requiredString)))
}

// TestNewGroup_Empty verifies the empty-composite degenerate case: VALID,
// never DISABLED by vacuous aggregation.
func TestNewGroup_Empty(t *testing.T) {
	g := NewGroup()

	assert.Equal(t, StatusValid, g.Status())
	assert.Equal(t, map[string]any{}, g.Value())
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Keys())
}

// TestGroup_Add_Chaining verifies Add returns the group.
func TestGroup_Add_Chaining(t *testing.T) {
	g := NewGroup()
	assert.Same(t, g, g.Add("a", NewField(1)))
}

// TestGroup_Add_Panics table-tests the construction contract violations.
func TestGroup_Add_Panics(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		assert.PanicsWithValue(t, "formtree: child key cannot be empty", func() {
			NewGroup().Add("", NewField(1))
		})
	})
	t.Run("dotted key", func(t *testing.T) {
		assert.PanicsWithValue(t, "formtree: child key cannot contain '.'", func() {
			NewGroup().Add("a.b", NewField(1))
		})
	})
	t.Run("nil child", func(t *testing.T) {
		assert.PanicsWithValue(t, "formtree: child control cannot be nil", func() {
			NewGroup().Add("a", nil)
		})
	})
	t.Run("duplicate key", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGroup().Add("a", NewField(1)).Add("a", NewField(2))
		})
	})
	t.Run("already attached", func(t *testing.T) {
		child := NewField(1)
		NewGroup().Add("a", child)
		assert.Panics(t, func() {
			NewGroup().Add("b", child)
		})
	})
}

// TestGroup_ValueAggregation verifies the group value is the keyed map of
// enabled child values.
func TestGroup_ValueAggregation(t *testing.T) {
	g := addressForm()

	assert.Equal(t, map[string]any{
		"street": "",
		"city":   "Springfield",
		"zip":    "",
	}, g.Value())
}

// TestGroup_StatusAggregation verifies an invalid child makes the group
// INVALID even with no errors of its own.
func TestGroup_StatusAggregation(t *testing.T) {
	g := addressForm()

	assert.Equal(t, StatusInvalid, g.Status())
	assert.Nil(t, g.Errors(), "aggregate invalidity carries no own errors")

	g.Get("zip").(*Field).SetValue("62704")
	assert.Equal(t, StatusValid, g.Status())
}

// TestGroup_OwnValidatorPrecedence verifies the group's own errors win
// over child-derived status.
func TestGroup_OwnValidatorPrecedence(t *testing.T) {
	crossField := func(c Control) Errors {
		v := c.Value().(map[string]any)
		if v["a"] == v["b"] {
			return Errors{"mustDiffer": true}
		}
		return nil
	}
	g := NewGroup(WithValidators(crossField)).
		Add("a", NewField("x")).
		Add("b", NewField("x"))

	assert.Equal(t, StatusInvalid, g.Status())
	assert.Equal(t, Errors{"mustDiffer": true}, g.Errors())

	g.Get("b").(*Field).SetValue("y")
	assert.Equal(t, StatusValid, g.Status())
}

// TestGroup_ChildEdit_PropagatesUp verifies a leaf edit refreshes every
// ancestor's value and status.
func TestGroup_ChildEdit_PropagatesUp(t *testing.T) {
	inner := NewGroup().Add("leaf", NewField(1))
	outer := NewGroup().Add("inner", inner)

	var outerValues []any
	outer.ValueChanges().Subscribe(func(v any) { outerValues = append(outerValues, v) })

	outer.Get("inner.leaf").(*Field).SetValue(2)

	assert.Equal(t, map[string]any{"inner": map[string]any{"leaf": 2}}, outer.Value())
	require.Len(t, outerValues, 1)
	assert.Equal(t, map[string]any{"inner": map[string]any{"leaf": 2}}, outerValues[0])
}

// TestGroup_ChildEdit_OnlySelf verifies OnlySelf suppresses the ancestor
// walk, leaving the parent's aggregate stale until the next refresh.
func TestGroup_ChildEdit_OnlySelf(t *testing.T) {
	g := NewGroup().Add("a", NewField(1))

	g.Get("a").(*Field).SetValue(2, OnlySelf())
	assert.Equal(t, map[string]any{"a": 1}, g.Value(), "parent aggregate untouched")

	g.UpdateValueAndValidity()
	assert.Equal(t, map[string]any{"a": 2}, g.Value())
}

// TestGroup_DisabledChildExcluded verifies a disabled child leaves both
// the aggregate value and the aggregate status.
func TestGroup_DisabledChildExcluded(t *testing.T) {
	g := addressForm()
	require.Equal(t, StatusInvalid, g.Status())

	g.Get("zip").Disable()

	v := g.Value().(map[string]any)
	assert.NotContains(t, v, "zip")
	assert.Contains(t, v, "city")
	assert.Equal(t, StatusValid, g.Status(), "the only invalid child left aggregation")
}

// TestGroup_EnableChild_Restores verifies re-enabling re-includes the
// child in value and status.
func TestGroup_EnableChild_Restores(t *testing.T) {
	g := addressForm()
	g.Get("zip").Disable()
	require.Equal(t, StatusValid, g.Status())

	g.Get("zip").Enable()

	assert.Contains(t, g.Value().(map[string]any), "zip")
	assert.Equal(t, StatusInvalid, g.Status())
}

// TestGroup_AllChildrenDisabled verifies the group itself reports
// DISABLED when no enabled child remains.
func TestGroup_AllChildrenDisabled(t *testing.T) {
	g := NewGroup().
		Add("a", NewField(1)).
		Add("b", NewField(2))

	g.Get("a").Disable()
	assert.Equal(t, StatusValid, g.Status())

	g.Get("b").Disable()
	assert.Equal(t, StatusDisabled, g.Status())

	g.Get("a").Enable()
	assert.Equal(t, StatusValid, g.Status())
}

// TestGroup_DisableGroup_Cascades verifies disabling a composite disables
// the whole subtree and keeps all children in the disabled aggregate.
func TestGroup_DisableGroup_Cascades(t *testing.T) {
	g := addressForm()

	g.Disable()

	assert.Equal(t, StatusDisabled, g.Status())
	assert.Equal(t, StatusDisabled, g.Get("street").Status())
	assert.Equal(t, StatusDisabled, g.Get("zip").Status())
	// A disabled group reports every child's value.
	assert.Equal(t, map[string]any{
		"street": "",
		"city":   "Springfield",
		"zip":    "",
	}, g.Value())
}

// TestGroup_Contains verifies Contains is existence AND enabled-ness.
func TestGroup_Contains(t *testing.T) {
	g := addressForm()

	assert.True(t, g.Contains("city"))
	assert.False(t, g.Contains("country"))

	g.Get("city").Disable()
	assert.False(t, g.Contains("city"))
	assert.NotNil(t, g.Get("city"), "Get still resolves disabled children")
}

// TestGroup_Keys_InsertionOrder verifies key order is insertion order.
func TestGroup_Keys_InsertionOrder(t *testing.T) {
	g := addressForm()
	assert.Equal(t, []string{"street", "city", "zip"}, g.Keys())
	assert.Equal(t, 3, g.Len())
}

// TestGroup_RawValue verifies RawValue includes disabled subtrees.
func TestGroup_RawValue(t *testing.T) {
	inner := NewGroup().Add("leaf", NewField("deep"))
	g := NewGroup().
		Add("a", NewField(1)).
		Add("inner", inner)
	g.Get("a").Disable()

	assert.Equal(t, map[string]any{
		"a":     1,
		"inner": map[string]any{"leaf": "deep"},
	}, g.RawValue())
	assert.NotContains(t, g.Value().(map[string]any), "a")
}

// TestGroup_ChildErrors verifies the on-demand per-child error view.
func TestGroup_ChildErrors(t *testing.T) {
	g := addressForm()

	assert.Equal(t, map[string]Errors{
		"zip": {"required": true},
	}, g.ChildErrors())

	g.Get("zip").Disable()
	assert.Empty(t, g.ChildErrors(), "disabled children are omitted")
}

// TestGroup_Reset verifies a keyed reset reaches every child and clears
// the flags tree-wide.
func TestGroup_Reset(t *testing.T) {
	g := addressForm()
	g.Get("street").(*Field).SetValue("Main St")
	g.Get("street").MarkAsDirty()
	g.Get("street").MarkAsTouched()

	g.Reset(map[string]any{"street": "Elm St", "zip": "62704"})

	assert.Equal(t, "Elm St", g.Get("street").Value())
	assert.Equal(t, "62704", g.Get("zip").Value())
	assert.Nil(t, g.Get("city").Value(), "absent keys reset to nil")
	assert.True(t, g.Pristine())
	assert.True(t, g.Untouched())
	assert.Equal(t, StatusValid, g.Status())
}

// TestGroup_Reset_Nil verifies a nil reset wipes every child value.
func TestGroup_Reset_Nil(t *testing.T) {
	g := NewGroup().Add("a", NewField(1))

	g.Reset(nil)

	assert.Nil(t, g.Get("a").Value())
}
