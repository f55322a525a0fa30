package formtree

import (
	"slices"
	"strings"
)

// pathSeparator delimits keys inside a single path element.
const pathSeparator = "."

// Get resolves a descendant by path, walking key by key from the control.
// Each path element may itself be a dot-delimited string, so
// Get("a.b") and Get("a", "b") are equivalent. Resolution fails softly:
// an empty path, an unknown key, or a step through a leaf yields nil.
func (b *controlBase) Get(path ...string) Control {
	var keys []string
	for _, elem := range path {
		for _, key := range strings.Split(elem, pathSeparator) {
			if key != "" {
				keys = append(keys, key)
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	cur := b.self
	for _, key := range keys {
		cur = cur.childNamed(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// GetError returns the error detail for code on the control at path, or
// on the control itself when path is empty. Returns nil when the control
// is not found or the code is absent.
func (b *controlBase) GetError(code string, path ...string) any {
	c := Control(b.self)
	if len(path) > 0 {
		c = b.Get(path...)
	}
	if c == nil {
		return nil
	}
	errs := c.Errors()
	if errs == nil {
		return nil
	}
	return errs[code]
}

// HasError reports whether GetError returns a non-nil detail.
func (b *controlBase) HasError(code string, path ...string) bool {
	return b.GetError(code, path...) != nil
}

// path renders the control's dotted address from the root, for logs,
// metrics, and spans. The root itself renders as the empty string.
func (b *controlBase) path() string {
	var keys []string
	cur := b.self
	for {
		p := cur.base().parent
		if p == nil {
			break
		}
		g, ok := p.(*Group)
		if !ok {
			break
		}
		keys = append(keys, g.keyOf(cur))
		cur = p
	}
	slices.Reverse(keys)
	return strings.Join(keys, pathSeparator)
}
