package validator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/randalmurphal/formtree/pkg/formtree"
	"github.com/randalmurphal/formtree/pkg/formtree/cache"
	"github.com/randalmurphal/formtree/pkg/formtree/retry"
)

// RetryAsync wraps an async validator so transient failures are retried
// with backoff before the error is surfaced. The validation outcome
// itself is never retried, only errors returned by the validator.
func RetryAsync(cfg retry.Config, inner formtree.AsyncValidatorFunc) formtree.AsyncValidatorFunc {
	return func(ctx context.Context, c formtree.Control) (formtree.Errors, error) {
		result := retry.Do(ctx, cfg, func(ctx context.Context) (formtree.Errors, error) {
			return inner(ctx, c)
		})
		return result.Value, result.Err
	}
}

// KeyFunc derives a cache key from the control under validation.
type KeyFunc func(c formtree.Control) string

// CachedAsync memoizes an async validator's outcomes in a cache store.
// A hit skips the inner validator entirely; store failures other than a
// miss fall through to the inner validator.
func CachedAsync(store cache.Store, ttl time.Duration, key KeyFunc, inner formtree.AsyncValidatorFunc) formtree.AsyncValidatorFunc {
	return func(ctx context.Context, c formtree.Control) (formtree.Errors, error) {
		k := key(c)
		if data, err := store.Get(k); err == nil {
			var errs formtree.Errors
			if len(data) == 0 {
				return nil, nil
			}
			if jsonErr := json.Unmarshal(data, &errs); jsonErr == nil {
				return errs, nil
			}
		} else if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrStoreClosed) {
			return nil, err
		}

		errs, err := inner(ctx, c)
		if err != nil {
			return errs, err
		}

		// A valid outcome is stored as an empty payload, not NULL, so
		// SQLite-backed stores accept it.
		data := []byte{}
		if errs != nil {
			data, err = json.Marshal(errs)
			if err != nil {
				return errs, nil
			}
		}
		// Best effort; a failed put only costs the next lookup.
		_ = store.Put(k, data, ttl)
		return errs, nil
	}
}
