package formtree

import "errors"

// Errors maps an error code to its detail (a message, a bound, a payload
// for the UI layer). Validation errors are domain data, not faults: a nil
// map means the control's own sync validator is satisfied.
//
// Only a control's own validator result is stored here; a composite does
// not copy its children's errors upward - aggregate invalidity is carried
// by Status instead.
type Errors map[string]any

// Has reports whether the given error code is present.
func (e Errors) Has(code string) bool {
	_, ok := e[code]
	return ok
}

// ErrorCodeAsync is the error code recorded when an async validator
// returns a non-nil error (a failed probe, not a validation verdict).
const ErrorCodeAsync = "async"

// Sentinel errors for configuration.
var (
	// ErrUnknownUpdateOn indicates an unrecognized update strategy string.
	ErrUnknownUpdateOn = errors.New("unknown update strategy")
)
