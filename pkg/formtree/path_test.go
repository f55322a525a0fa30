package formtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func nestedForm() *Group {
	return NewGroup().
		Add("name", NewField("Ada")).
		Add("address", NewGroup().
			Add("city", NewField("London")).
			Add("zip", NewField("", WithValidators(requiredString))))
}

// TestGet_PathForms verifies dotted and variadic paths resolve the same
// control.
func TestGet_PathForms(t *testing.T) {
	g := nestedForm()

	dotted := g.Get("address.city")
	variadic := g.Get("address", "city")
	mixed := g.Get("address", "city")

	assert.NotNil(t, dotted)
	assert.Same(t, dotted, variadic)
	assert.Same(t, dotted, mixed)
	assert.Equal(t, "London", dotted.Value())
}

// TestGet_SoftFailures table-tests the nil-resolution cases.
func TestGet_SoftFailures(t *testing.T) {
	g := nestedForm()

	testCases := []struct {
		name string
		path []string
	}{
		{"empty path", nil},
		{"blank element", []string{""}},
		{"unknown key", []string{"phone"}},
		{"unknown nested key", []string{"address", "country"}},
		{"walk through a leaf", []string{"name", "first"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, g.Get(tc.path...))
		})
	}
}

// TestGet_FromSubtree verifies resolution is relative to the receiver.
func TestGet_FromSubtree(t *testing.T) {
	g := nestedForm()
	address := g.Get("address")

	assert.Same(t, g.Get("address.city"), address.Get("city"))
	assert.Nil(t, address.Get("name"), "no upward resolution")
}

// TestGetError verifies error lookup on self and at a path.
func TestGetError(t *testing.T) {
	g := nestedForm()

	assert.Equal(t, true, g.Get("address.zip").GetError("required"))
	assert.Equal(t, true, g.GetError("required", "address.zip"))
	assert.Equal(t, true, g.GetError("required", "address", "zip"))

	assert.Nil(t, g.GetError("required", "address.city"))
	assert.Nil(t, g.GetError("required", "missing.control"))
	assert.Nil(t, g.GetError("required"), "group has no own errors")
}

// TestHasError verifies the boolean form.
func TestHasError(t *testing.T) {
	g := nestedForm()

	assert.True(t, g.HasError("required", "address.zip"))
	assert.False(t, g.HasError("minlength", "address.zip"))
	assert.False(t, g.HasError("required", "nope"))
}

// TestRoot_Nested verifies Root walks to the top from any depth.
func TestRoot_Nested(t *testing.T) {
	g := nestedForm()
	leaf := g.Get("address.zip")

	assert.Same(t, Control(g), leaf.Root())
	assert.Same(t, g.Get("address"), leaf.Parent())
}
