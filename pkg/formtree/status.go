package formtree

import "fmt"

// Status classifies a control. Every control is in exactly one status at
// any time; no other values exist.
type Status string

// Control status constants.
const (
	// StatusValid means the control has passed all validation checks.
	StatusValid Status = "VALID"

	// StatusInvalid means the control or one of its enabled descendants
	// has failed a validation check.
	StatusInvalid Status = "INVALID"

	// StatusPending means an async validation is in flight for the control
	// or one of its enabled descendants.
	StatusPending Status = "PENDING"

	// StatusDisabled means the control is exempt from validation and
	// excluded from its parent's aggregate value and status.
	StatusDisabled Status = "DISABLED"
)

// UpdateOn names the user interaction that should trigger revalidation of
// a control. It is a hint consumed by the input-binding layer (see the
// binding package); the core never gates its own operations on it.
type UpdateOn string

// Update strategy constants.
const (
	// UpdateOnDefault inherits the strategy from the parent control,
	// resolving to UpdateOnChange at the root.
	UpdateOnDefault UpdateOn = ""

	// UpdateOnChange revalidates on every value change.
	UpdateOnChange UpdateOn = "change"

	// UpdateOnBlur revalidates when the control loses focus.
	UpdateOnBlur UpdateOn = "blur"

	// UpdateOnSubmit revalidates when the form is submitted.
	UpdateOnSubmit UpdateOn = "submit"
)

// ParseUpdateOn converts a string into an UpdateOn value.
// The empty string parses to UpdateOnDefault.
func ParseUpdateOn(s string) (UpdateOn, error) {
	switch UpdateOn(s) {
	case UpdateOnDefault, UpdateOnChange, UpdateOnBlur, UpdateOnSubmit:
		return UpdateOn(s), nil
	default:
		return UpdateOnDefault, fmt.Errorf("%w: %q", ErrUnknownUpdateOn, s)
	}
}
