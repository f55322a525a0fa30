package formtree

import "context"

// Compose merges multiple sync validators into one. The composed
// validator runs every function and merges their error maps; later
// validators win on colliding codes. Nil entries are skipped. Returns nil
// when no validators remain, and the single function unchanged when only
// one remains.
func Compose(fns ...ValidatorFunc) ValidatorFunc {
	fns = compactValidators(fns)
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(c Control) Errors {
		var merged Errors
		for _, fn := range fns {
			merged = mergeErrors(merged, fn(c))
		}
		return merged
	}
}

// ComposeAsync merges multiple async validators into one. Functions run
// sequentially; the first probe failure aborts the run and is returned as
// the composed error.
func ComposeAsync(fns ...AsyncValidatorFunc) AsyncValidatorFunc {
	fns = compactAsyncValidators(fns)
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(ctx context.Context, c Control) (Errors, error) {
		var merged Errors
		for _, fn := range fns {
			errs, err := fn(ctx, c)
			if err != nil {
				return nil, err
			}
			merged = mergeErrors(merged, errs)
		}
		return merged, nil
	}
}

func mergeErrors(dst, src Errors) Errors {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(Errors, len(src))
	}
	for code, detail := range src {
		dst[code] = detail
	}
	return dst
}

func compactValidators(fns []ValidatorFunc) []ValidatorFunc {
	out := fns[:0:0]
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func compactAsyncValidators(fns []AsyncValidatorFunc) []AsyncValidatorFunc {
	out := fns[:0:0]
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}
