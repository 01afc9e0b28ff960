package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/querykit/errors"
)

// Sim is a simulated backend. Unseeded keys resolve to a synthesized
// document so callers can exercise the layer without fixtures; seeded
// values and injected failures take precedence. The fetch counter lets
// tests assert how many calls actually reached the backend.
type Sim struct {
	mu       sync.RWMutex
	docs     map[string]any
	failures map[string]error
	latency  time.Duration

	fetches int64
}

// NewSim creates a simulated backend with no latency.
func NewSim() *Sim {
	return &Sim{
		docs:     make(map[string]any),
		failures: make(map[string]error),
	}
}

func simKey(category, path string) string {
	return category + ":" + path
}

// Put seeds a document for category/path.
func (s *Sim) Put(category, path string, value any) {
	s.mu.Lock()
	s.docs[simKey(category, path)] = value
	delete(s.failures, simKey(category, path))
	s.mu.Unlock()
}

// FailWith makes fetches for category/path return err.
func (s *Sim) FailWith(category, path string, err error) {
	s.mu.Lock()
	s.failures[simKey(category, path)] = err
	s.mu.Unlock()
}

// SetLatency sets the simulated per-fetch latency.
func (s *Sim) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

// Fetches returns how many fetch calls reached the backend.
func (s *Sim) Fetches() int64 {
	return atomic.LoadInt64(&s.fetches)
}

// Fetch implements Fetcher.
func (s *Sim) Fetch(ctx context.Context, category, path string) (any, error) {
	atomic.AddInt64(&s.fetches, 1)

	if category == "" || path == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Sim", "Fetch", "category and path are required")
	}

	s.mu.RLock()
	latency := s.latency
	failure := s.failures[simKey(category, path)]
	doc, seeded := s.docs[simKey(category, path)]
	s.mu.RUnlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.WrapTransient(ctx.Err(), "Sim", "Fetch", "simulated fetch")
		case <-timer.C:
		}
	}

	if failure != nil {
		return nil, failure
	}
	if seeded {
		return doc, nil
	}

	// Synthesized document shape for unseeded keys
	return map[string]any{
		"category":  category,
		"path":      path,
		"fetchedAt": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
