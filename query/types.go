package query

import (
	"fmt"
	"time"

	"github.com/c360/querykit/errors"
	"github.com/c360/querykit/pkg/cache"
)

// Priority is an advisory scheduling hint on a descriptor. The batch
// scheduler does not currently act on it; see GroupByPriority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) valid() bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Descriptor names one unit of work: a caller-assigned id (the key of the
// batch result map), a category selecting the backend collection, a path
// locating the document within it, and an advisory priority.
//
// Two descriptors with equal category and path are the same query for
// caching and deduplication purposes, regardless of their ids.
type Descriptor struct {
	ID       string   `json:"id" yaml:"id"`
	Path     string   `json:"path" yaml:"path"`
	Category string   `json:"category" yaml:"category"`
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// CacheKey returns the key identifying this query's cacheable unit.
func (d Descriptor) CacheKey() string {
	return d.Category + ":" + d.Path
}

// Validate checks the descriptor fields.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Descriptor", "Validate", "id is required")
	}
	if d.Category == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Descriptor", "Validate", "category is required")
	}
	if d.Path == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Descriptor", "Validate", "path is required")
	}
	if !d.Priority.valid() {
		return errors.WrapInvalid(errors.ErrInvalidData, "Descriptor", "Validate",
			fmt.Sprintf("unknown priority %q", d.Priority))
	}
	return nil
}

// Result is the per-query outcome record.
//
// FromCache is true only for values served straight from the cache store.
// A caller that joined an in-flight fetch gets FromCache false with a zero
// Duration: it did not trigger a fetch, but it is not a true cache hit.
type Result struct {
	OK        bool          `json:"ok"`
	Data      any           `json:"data,omitempty"`
	Err       error         `json:"-"`
	FromCache bool          `json:"from_cache"`
	Duration  time.Duration `json:"duration"`
}

// LayerStats is a snapshot of the layer's runtime state.
type LayerStats struct {
	// PendingQueries is the number of fetches currently in flight.
	PendingQueries int `json:"pending_queries"`
	// QueuedQueries is the number of batch queries waiting for or inside
	// chunk execution.
	QueuedQueries int `json:"queued_queries"`
	// Cache summarizes the cache store's counters.
	Cache cache.StatsSummary `json:"cache"`
}
