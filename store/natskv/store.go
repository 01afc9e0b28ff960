// Package natskv implements the store.Fetcher contract on NATS JetStream
// key/value buckets. A query's category selects a bucket; its path is the
// key within it. Values holding JSON are decoded into generic documents;
// anything else passes through as raw bytes.
package natskv

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/querykit/errors"
	"github.com/c360/querykit/pkg/retry"
)

// Deps holds runtime dependencies for the store.
type Deps struct {
	JS      jetstream.JetStream // Required JetStream context
	Logger  *slog.Logger        // Optional; defaults to slog.Default()
	Timeout time.Duration       // Per-operation timeout; defaults to 5s
	Retry   retry.Config        // Bucket resolution backoff; zero value gets retry.Quick()
}

// Store fetches documents from JetStream KV buckets. Bucket handles are
// resolved lazily per category and cached for the store's lifetime.
type Store struct {
	js       jetstream.JetStream
	logger   *slog.Logger
	timeout  time.Duration
	retryCfg retry.Config

	mu      sync.RWMutex
	buckets map[string]jetstream.KeyValue
}

// New creates a store from its dependencies.
func New(deps Deps) (*Store, error) {
	if deps.JS == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Store", "New", "jetstream context is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retryCfg := deps.Retry
	if retryCfg == (retry.Config{}) {
		retryCfg = retry.Quick()
	}

	return &Store{
		js:       deps.JS,
		logger:   logger,
		timeout:  timeout,
		retryCfg: retryCfg,
		buckets:  make(map[string]jetstream.KeyValue),
	}, nil
}

// Fetch implements store.Fetcher.
func (s *Store) Fetch(ctx context.Context, category, path string) (any, error) {
	if category == "" || path == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Store", "Fetch", "category and path are required")
	}

	kv, err := s.bucket(ctx, category)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := kv.Get(opCtx, path)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errors.WrapInvalid(errors.ErrKeyNotFound, "Store", "Fetch",
				fmt.Sprintf("%s/%s", category, path))
		}
		return nil, errors.WrapTransient(err, "Store", "Fetch", "kv get")
	}

	return Decode(entry.Value()), nil
}

// bucket resolves the KV handle for a category, retrying transient lookup
// failures. A missing bucket is not retried.
func (s *Store) bucket(ctx context.Context, category string) (jetstream.KeyValue, error) {
	name := BucketName(category)

	s.mu.RLock()
	kv, ok := s.buckets[name]
	s.mu.RUnlock()
	if ok {
		return kv, nil
	}

	kv, err := retry.DoWithResult(ctx, s.retryCfg, func() (jetstream.KeyValue, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		handle, err := s.js.KeyValue(opCtx, name)
		if err != nil {
			if stderrors.Is(err, jetstream.ErrBucketNotFound) {
				return nil, retry.NonRetryable(fmt.Errorf("bucket %s: %w", name, errors.ErrBucketNotFound))
			}
			return nil, err
		}
		return handle, nil
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrBucketNotFound) {
			return nil, errors.WrapInvalid(err, "Store", "bucket", "resolve "+name)
		}
		return nil, errors.WrapTransient(err, "Store", "bucket", "resolve "+name)
	}

	s.mu.Lock()
	s.buckets[name] = kv
	s.mu.Unlock()

	s.logger.Debug("resolved kv bucket", "category", category, "bucket", name)
	return kv, nil
}

// BucketName maps a category to a valid KV bucket name. Bucket names allow
// alphanumerics, dash, and underscore; anything else becomes an underscore.
func BucketName(category string) string {
	var b strings.Builder
	b.Grow(len(category))
	for _, r := range category {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Decode interprets a raw KV value: JSON decodes into a generic document,
// anything else passes through as bytes.
func Decode(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return raw
}
