package query

import (
	"context"

	"github.com/c360/querykit/errors"
)

// CriticalDescriptors returns the fixed query set warmed at application
// start: the user's resource and policy lists, the system health snapshot,
// and the trust metrics document.
func CriticalDescriptors(userID string) []Descriptor {
	return []Descriptor{
		{ID: "resources", Category: "resources", Path: userID, Priority: PriorityHigh},
		{ID: "policies", Category: "policies", Path: userID, Priority: PriorityHigh},
		{ID: "system-health", Category: "system", Path: "health", Priority: PriorityHigh},
		{ID: "trust-metrics", Category: "trust", Path: "metrics", Priority: PriorityHigh},
	}
}

// Preload warms the cache with the critical dataset for a user through the
// batch scheduler. Individual fetch failures are logged, not returned;
// like any batch, the preload succeeds as a whole.
func (l *Layer) Preload(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Layer", "Preload", "user id is required")
	}

	results, err := l.Batch(ctx, CriticalDescriptors(userID))
	if err != nil {
		return err
	}

	var cached, failed int
	for id, res := range results {
		if res.FromCache {
			cached++
		}
		if !res.OK {
			failed++
			l.logger.Warn("critical preload query failed", "id", id, "error", res.Err)
		}
	}

	l.logger.Info("critical data preloaded",
		"user_id", userID, "total", len(results), "cached", cached, "failed", failed)
	return nil
}
