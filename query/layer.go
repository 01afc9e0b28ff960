// Package query implements the client-side coalescing and caching layer.
//
// A Layer fronts a store.Fetcher with three mechanisms: a process-local
// cache keyed by category:path, deduplication of concurrent identical
// fetches through an in-flight registry, and chunked batch scheduling
// with bounded concurrency and inter-chunk pacing.
//
// Layers carry no package-level state; construct one per process (or per
// test) and share it between callers.
package query

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/c360/querykit/errors"
	"github.com/c360/querykit/metric"
	"github.com/c360/querykit/pkg/cache"
	"github.com/c360/querykit/store"
)

// Deps holds runtime dependencies for the layer.
type Deps struct {
	Fetcher  store.Fetcher           // Required backend collaborator
	Config   Config                  // Scheduler tuning; zero value gets defaults
	Registry *metric.MetricsRegistry // Optional Prometheus registration
	Logger   *slog.Logger            // Optional; defaults to slog.Default()
}

// Layer is the coalescing and caching front for a document backend.
// All methods are safe for concurrent use.
type Layer struct {
	cfg     Config
	fetcher store.Fetcher
	cache   cache.Cache[any]
	limiter *rate.Limiter // nil unless Config.FetchRate > 0
	logger  *slog.Logger
	metrics *layerMetrics // nil unless a registry was provided

	// In-flight registry: at most one outstanding fetch per cache key.
	mu      sync.Mutex
	flights map[string]*flight

	queued int64 // batch queries waiting for or inside chunk execution
}

// New creates a layer from its dependencies.
func New(deps Deps) (*Layer, error) {
	if deps.Fetcher == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Layer", "New", "fetcher is required")
	}

	cfg := deps.Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cacheOpts []cache.Option[any]
	if deps.Registry != nil {
		cacheOpts = append(cacheOpts, cache.WithMetrics[any](deps.Registry, "query"))
	}
	c, err := cache.New[any](cacheOpts...)
	if err != nil {
		return nil, err
	}

	var metrics *layerMetrics
	if deps.Registry != nil {
		metrics, err = newLayerMetrics(deps.Registry)
		if err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if cfg.FetchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.FetchRate), cfg.FetchBurst)
	}

	return &Layer{
		cfg:     cfg,
		fetcher: deps.Fetcher,
		cache:   c,
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
		flights: make(map[string]*flight),
	}, nil
}

// Stats returns a snapshot of the layer's runtime state.
func (l *Layer) Stats() LayerStats {
	l.mu.Lock()
	pending := len(l.flights)
	l.mu.Unlock()

	return LayerStats{
		PendingQueries: pending,
		QueuedQueries:  int(atomic.LoadInt64(&l.queued)),
		Cache:          l.cache.Stats().Summary(),
	}
}

// Reset clears the entire cache store. There is no per-key invalidation.
// Fetches already in flight are unaffected and repopulate the cache when
// they settle.
func (l *Layer) Reset() {
	if err := l.cache.Clear(); err != nil {
		l.logger.Warn("cache clear failed", "error", err)
	}
}
