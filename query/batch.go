package query

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360/querykit/errors"
)

// Batch executes a set of queries and returns one Result per descriptor
// id. The result map's key set always equals the input id set, whatever
// the individual outcomes; per-query failures are carried in Result.Err
// and never fail the batch.
//
// Cached queries are served immediately. The uncached remainder is split
// into chunks of Config.ChunkSize; each chunk runs with at most
// Config.MaxConcurrent simultaneous fetches, and consecutive chunks are
// separated by Config.ChunkDelay to ease backend rate-limit pressure.
// Chunk N+1 never starts before chunk N has fully completed.
//
// Descriptor ids must be unique within one call; duplicates are rejected
// before any query runs.
func (l *Layer) Batch(ctx context.Context, descriptors []Descriptor) (map[string]Result, error) {
	seen := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.ID]; dup {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "Layer", "Batch",
				fmt.Sprintf("duplicate descriptor id %q", d.ID))
		}
		seen[d.ID] = struct{}{}
	}

	if l.metrics != nil {
		l.metrics.batchSize.Observe(float64(len(descriptors)))
	}

	// Partition into cached and needs-fetch, preserving input order.
	results := make(map[string]Result, len(descriptors))
	var uncached []Descriptor
	for _, d := range descriptors {
		if value, ok := l.cache.Get(d.CacheKey()); ok {
			results[d.ID] = Result{OK: true, Data: value, FromCache: true}
		} else {
			uncached = append(uncached, d)
		}
	}
	if len(uncached) == 0 {
		return results, nil
	}

	batchID := uuid.NewString()
	l.logger.Debug("executing batch",
		"batch_id", batchID,
		"total", len(descriptors),
		"cached", len(descriptors)-len(uncached),
		"chunks", (len(uncached)+l.cfg.ChunkSize-1)/l.cfg.ChunkSize)

	atomic.AddInt64(&l.queued, int64(len(uncached)))

	var mu sync.Mutex
	for start := 0; start < len(uncached); start += l.cfg.ChunkSize {
		end := min(start+l.cfg.ChunkSize, len(uncached))

		var g errgroup.Group
		g.SetLimit(l.cfg.MaxConcurrent)
		for _, d := range uncached[start:end] {
			g.Go(func() error {
				res, _ := l.Do(ctx, d)
				atomic.AddInt64(&l.queued, -1)
				mu.Lock()
				results[d.ID] = res
				mu.Unlock()
				// Failures stay in the result map; siblings proceed.
				return nil
			})
		}
		_ = g.Wait()

		if end == len(uncached) {
			break
		}

		timer := time.NewTimer(l.cfg.ChunkDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err := errors.WrapTransient(ctx.Err(), "Layer", "Batch", "inter-chunk delay")
			for _, d := range uncached[end:] {
				results[d.ID] = Result{Err: err}
				atomic.AddInt64(&l.queued, -1)
			}
			l.logger.Warn("batch aborted during chunk delay",
				"batch_id", batchID, "completed", end, "remaining", len(uncached)-end)
			return results, nil
		case <-timer.C:
		}
		if l.metrics != nil {
			l.metrics.chunkDelays.Inc()
		}
	}

	return results, nil
}
