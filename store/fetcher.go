// Package store defines the outbound fetch contract of the coalescing
// layer and provides a simulated backend for tests and local development.
//
// The layer treats the remote store as an opaque, key-addressable fetch
// primitive: one call, one value. Real backends live in subpackages
// (store/natskv).
package store

import "context"

// Fetcher is the single outbound primitive of the coalescing layer.
// Category selects a backend collection; path locates a document within
// it. Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, category, path string) (any, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, category, path string) (any, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, category, path string) (any, error) {
	return f(ctx, category, path)
}
