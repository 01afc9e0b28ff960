package query

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/querykit/metric"
)

// layerMetrics holds Prometheus metrics for the coalescing layer.
// Cache hit/miss counters live with the cache store itself.
type layerMetrics struct {
	fetches        *prometheus.CounterVec
	dedupJoins     prometheus.Counter
	pendingFetches prometheus.Gauge
	fetchDuration  prometheus.Histogram
	batchSize      prometheus.Histogram
	chunkDelays    prometheus.Counter
}

func newLayerMetrics(registry *metric.MetricsRegistry) (*layerMetrics, error) {
	m := &layerMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "fetches_total",
			Help:      "Backend fetches issued by outcome",
		}, []string{"status"}),
		dedupJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "dedup_joins_total",
			Help:      "Callers that joined an already in-flight fetch",
		}),
		pendingFetches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "pending_fetches",
			Help:      "Fetches currently in flight",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Wall-clock duration of backend fetches",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "batch_size",
			Help:      "Number of descriptors per batch call",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24, 32},
		}),
		chunkDelays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querykit",
			Subsystem: "query",
			Name:      "chunk_delays_total",
			Help:      "Inter-chunk pauses taken by the batch scheduler",
		}),
	}

	if err := registry.RegisterCounterVec("query", "fetches_total", m.fetches); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("query", "dedup_joins_total", m.dedupJoins); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("query", "pending_fetches", m.pendingFetches); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("query", "fetch_duration_seconds", m.fetchDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("query", "batch_size", m.batchSize); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("query", "chunk_delays_total", m.chunkDelays); err != nil {
		return nil, err
	}

	return m, nil
}
