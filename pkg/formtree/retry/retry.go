// Package retry provides retry with exponential backoff for fallible
// async validation probes (network lookups, uniqueness checks).
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// RetryableFunc optionally overrides the default retryability check
	// (retry everything except context cancellation).
	RetryableFunc func(error) bool
}

// Default is the standard retry configuration.
var Default = Config{
	MaxAttempts:    3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// Aggressive retries more times with shorter backoff.
var Aggressive = Config{
	MaxAttempts:    5,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	BackoffFactor:  1.5,
	Jitter:         0.2,
}

// None disables retries.
var None = Config{
	MaxAttempts: 1,
}

// Result contains the outcome of a retried operation.
type Result[T any] struct {
	// Value is the result if successful.
	Value T

	// Err is the final error if all attempts failed.
	Err error

	// Attempts is the number of attempts made.
	Attempts int

	// Duration is the total time spent retrying.
	Duration time.Duration
}

// Do executes fn with retries, respecting context cancellation between
// attempts and during backoff sleeps.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) Result[T] {
	start := time.Now()
	backoff := cfg.InitialBackoff
	var lastErr error

	isRetryable := cfg.RetryableFunc
	if isRetryable == nil {
		isRetryable = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result[T]{
				Err:      err,
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}

		value, err := fn(ctx)
		if err == nil {
			return Result[T]{
				Value:    value,
				Attempts: attempt + 1,
				Duration: time.Since(start),
			}
		}

		lastErr = err

		if !isRetryable(err) {
			return Result[T]{
				Err:      err,
				Attempts: attempt + 1,
				Duration: time.Since(start),
			}
		}

		// Don't sleep after the last attempt
		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return Result[T]{
					Err:      ctx.Err(),
					Attempts: attempt + 1,
					Duration: time.Since(start),
				}
			case <-time.After(withJitter(backoff, cfg.Jitter)):
			}

			backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
			if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	return Result[T]{
		Err:      lastErr,
		Attempts: attempts,
		Duration: time.Since(start),
	}
}

// withJitter returns the backoff duration with jitter applied:
// base +/- (base * jitter * random).
func withJitter(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	amount := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + amount)
}
