// Package cache provides result storage for async validators, so repeated
// probes of the same candidate value (a username-taken check, a remote
// code lookup) can be answered without re-contacting the external source.
//
// This is validator memoization keyed by candidate value, not persistence
// of form state.
package cache

import (
	"errors"
	"time"
)

// Store persists async validation results by key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves a cached result.
	// Returns ErrNotFound if the key is absent or its entry has expired.
	Get(key string) ([]byte, error)

	// Put stores a result under key, overwriting any existing entry.
	// A positive ttl bounds the entry's lifetime; ttl <= 0 stores it
	// without expiry.
	Put(key string, data []byte, ttl time.Duration) error

	// Delete removes an entry. Returns nil if the key is absent.
	Delete(key string) error

	// Purge removes expired entries.
	Purge() error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for cache operations.
var (
	// ErrNotFound indicates the key is absent or expired.
	ErrNotFound = errors.New("cache entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("cache store closed")
)
