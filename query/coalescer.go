package query

import (
	"context"
	"time"

	"github.com/c360/querykit/errors"
)

// flight is one outstanding fetch shared by every caller of its cache key.
// value and err are written once, before done is closed.
type flight struct {
	done  chan struct{}
	value any
	err   error
}

// Do executes a single query through the coalescing path.
//
// Order of consultation: an in-flight fetch for the same cache key is
// joined first; then the cache store is checked; only then is a new fetch
// issued. For any set of concurrent calls sharing a cache key, exactly one
// backend fetch runs, and every caller observes the same value or error.
//
// On fetch failure the error is returned and also carried in Result.Err;
// nothing is cached, so a later call retries fresh.
func (l *Layer) Do(ctx context.Context, d Descriptor) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}
	key := d.CacheKey()

	l.mu.Lock()
	if fl, ok := l.flights[key]; ok {
		l.mu.Unlock()
		return l.join(ctx, fl)
	}
	if value, ok := l.cache.Get(key); ok {
		l.mu.Unlock()
		return Result{OK: true, Data: value, FromCache: true}, nil
	}
	fl := &flight{done: make(chan struct{})}
	l.flights[key] = fl
	l.mu.Unlock()

	return l.lead(ctx, d, key, fl)
}

// join waits for the in-flight fetch registered by another caller. The
// joining caller did not trigger a fetch, but it is not a true cache hit
// either: FromCache is false and Duration is zero.
//
// A joiner whose context ends first returns early; the underlying fetch
// keeps running and its result is still cached.
func (l *Layer) join(ctx context.Context, fl *flight) (Result, error) {
	if l.metrics != nil {
		l.metrics.dedupJoins.Inc()
	}

	select {
	case <-ctx.Done():
		err := errors.WrapTransient(ctx.Err(), "Layer", "Do", "await shared fetch")
		return Result{Err: err}, err
	case <-fl.done:
	}

	if fl.err != nil {
		return Result{Err: fl.err}, fl.err
	}
	return Result{OK: true, Data: fl.value}, nil
}

// lead performs the fetch for a newly registered flight and settles it.
func (l *Layer) lead(ctx context.Context, d Descriptor, key string, fl *flight) (Result, error) {
	var (
		value    any
		err      error
		duration time.Duration
	)

	if l.limiter != nil {
		if werr := l.limiter.Wait(ctx); werr != nil {
			err = errors.WrapTransient(werr, "Layer", "Do", "rate limit wait")
		}
	}

	if err == nil {
		if l.metrics != nil {
			l.metrics.pendingFetches.Inc()
		}
		start := time.Now()
		value, err = l.fetcher.Fetch(ctx, d.Category, d.Path)
		duration = time.Since(start)
		if l.metrics != nil {
			l.metrics.pendingFetches.Dec()
			l.metrics.fetchDuration.Observe(duration.Seconds())
		}

		if err != nil {
			err = errors.Wrap(err, "Layer", "Do", "backend fetch")
			if l.metrics != nil {
				l.metrics.fetches.WithLabelValues("error").Inc()
			}
		} else {
			if _, serr := l.cache.Set(key, value); serr != nil {
				l.logger.Warn("cache set failed", "key", key, "error", serr)
			}
			if l.metrics != nil {
				l.metrics.fetches.WithLabelValues("success").Inc()
			}
		}
	}

	fl.value, fl.err = value, err

	// Remove the registration before waking waiters, on success and
	// failure alike. A leaked entry would block every future fetch for
	// this key.
	l.mu.Lock()
	delete(l.flights, key)
	l.mu.Unlock()
	close(fl.done)

	if err != nil {
		return Result{Err: err, Duration: duration}, err
	}
	return Result{OK: true, Data: value, Duration: duration}, nil
}
