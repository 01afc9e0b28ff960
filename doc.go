// Package querykit provides a client-side data-access coalescing and caching
// layer for document backends.
//
// Application code describes reads as query descriptors (an id, a category,
// a path, and an advisory priority) and submits them one at a time or in
// batches. QueryKit sits between those callers and a remote store and applies
// three mechanisms:
//
//   - Caching: results are kept in a process-local cache keyed by
//     category:path until the layer is reset.
//   - Coalescing: concurrent requests for the same category:path share one
//     outstanding fetch; at most one fetch per key is ever in flight.
//   - Chunked scheduling: batches are split into fixed-size chunks executed
//     with bounded concurrency and a short pause between chunks, trading
//     latency for backend stability under bursty fan-out.
//
// The remote store is abstracted behind a single-method contract
// (store.Fetcher); store/natskv implements it on NATS JetStream KV and
// store.Sim provides a simulated backend for tests and local development.
//
// # Layout
//
//   - query: descriptors, results, the coalescing executor, the batch
//     scheduler, priority grouping, and the preload helper
//   - pkg/cache: the generic cache store with statistics and metrics
//   - store, store/natskv: the outbound fetch contract and backends
//   - errors, metric, pkg/retry: classified errors, the Prometheus
//     registry, and backoff used by the backends
//
// # Quick start
//
//	backend := store.NewSim()
//	layer, err := query.New(query.Deps{Fetcher: backend})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := layer.Do(ctx, query.Descriptor{
//	    ID:       "profile",
//	    Category: "users",
//	    Path:     userID,
//	})
//
//	results, _ := layer.Batch(ctx, descriptors)
//	for id, r := range results {
//	    if !r.OK {
//	        log.Printf("query %s failed: %v", id, r.Err)
//	    }
//	}
package querykit
