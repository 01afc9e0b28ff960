// Package cache provides a generic, thread-safe cache store with built-in
// statistics and optional Prometheus metrics.
//
// The store has no TTL and no eviction: entries live until they are deleted
// or the store is cleared. The coalescing layer relies on this — a settled
// fetch stays cached until an explicit global reset.
package cache

import (
	"github.com/c360/querykit/errors"
)

// Cache is a generic cache store parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key, overwriting any previous
	// value. Returns true if a new entry was created, false if updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries.
	Size() int

	// Keys returns a slice of all keys currently in the cache.
	Keys() []string

	// Stats returns the cache statistics tracker. Never nil.
	Stats() *Statistics
}

// New creates a cache store. Statistics are always collected; Prometheus
// export is enabled with WithMetrics.
func New[V any](opts ...Option[V]) (Cache[V], error) {
	return newStore(applyOptions(opts...))
}

// validateKey rejects keys the store cannot represent.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
