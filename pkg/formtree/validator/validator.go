// Package validator provides the standard library of validation
// predicates for formtree controls.
//
// Validators are pure functions from a control to an error map; nil means
// the control is acceptable. Compose them with formtree.Compose, or pass
// several to formtree.WithValidators which composes for you.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/formtree/pkg/formtree"
)

// Error codes produced by this package.
const (
	CodeRequired  = "required"
	CodeMin       = "min"
	CodeMax       = "max"
	CodeMinLength = "minlength"
	CodeMaxLength = "maxlength"
	CodePattern   = "pattern"
	CodeEmail     = "email"
)

// Required fails when the control's value is empty: nil, an empty string,
// or a zero-length slice or map.
func Required() formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		if isEmpty(c.Value()) {
			return formtree.Errors{CodeRequired: true}
		}
		return nil
	}
}

// RequiredTrue fails unless the control's value is the boolean true.
// Intended for consent checkboxes.
func RequiredTrue() formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		if v, ok := c.Value().(bool); ok && v {
			return nil
		}
		return formtree.Errors{CodeRequired: true}
	}
}

// Min fails when the control holds a number below min.
// Non-numeric and empty values pass; pair with Required to reject those.
func Min(min float64) formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		n, ok := toFloat(c.Value())
		if !ok {
			return nil
		}
		if n < min {
			return formtree.Errors{CodeMin: map[string]any{"min": min, "actual": n}}
		}
		return nil
	}
}

// Max fails when the control holds a number above max.
func Max(max float64) formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		n, ok := toFloat(c.Value())
		if !ok {
			return nil
		}
		if n > max {
			return formtree.Errors{CodeMax: map[string]any{"max": max, "actual": n}}
		}
		return nil
	}
}

// MinLength fails when the control holds a string shorter than min.
// Empty values pass; pair with Required to reject those.
func MinLength(min int) formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		if length := len([]rune(s)); length < min {
			return formtree.Errors{CodeMinLength: map[string]any{"requiredLength": min, "actualLength": length}}
		}
		return nil
	}
}

// MaxLength fails when the control holds a string longer than max.
func MaxLength(max int) formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		s, ok := c.Value().(string)
		if !ok {
			return nil
		}
		if length := len([]rune(s)); length > max {
			return formtree.Errors{CodeMaxLength: map[string]any{"requiredLength": max, "actualLength": length}}
		}
		return nil
	}
}

// Pattern fails when the control holds a string not matching re.
// Empty values pass; pair with Required to reject those.
func Pattern(re *regexp.Regexp) formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return formtree.Errors{CodePattern: map[string]any{"requiredPattern": re.String(), "actualValue": s}}
		}
		return nil
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email fails when the control holds a string that is not a plausible
// email address. Empty values pass.
func Email() formtree.ValidatorFunc {
	return func(c formtree.Control) formtree.Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		if !emailRe.MatchString(s) {
			return formtree.Errors{CodeEmail: true}
		}
		return nil
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}
