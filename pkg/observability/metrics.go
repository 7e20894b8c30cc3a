package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the RNN-Descent index.
type Metrics struct {
	// Build metrics
	BuildsTotal        prometheus.Counter
	BuildDuration      prometheus.Histogram
	BuildRoundDuration *prometheus.HistogramVec
	BuildVectorsTotal  prometheus.Counter

	// Search metrics
	SearchesTotal    prometheus.Counter
	SearchLatency    prometheus.Histogram
	SearchRecall     prometheus.Histogram
	SearchResultSize prometheus.Histogram
	SearchErrors     *prometheus.CounterVec

	// Graph shape metrics
	GraphConnectedComponents prometheus.Gauge
	GraphMeanOutDegree       prometheus.Gauge
	GraphMeanInDegree        prometheus.Gauge

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rnndescent_builds_total",
				Help: "Total number of index builds",
			},
		),
		BuildDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rnndescent_build_duration_seconds",
				Help:    "End-to-end index build duration in seconds",
				Buckets: []float64{.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
			},
		),
		BuildRoundDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rnndescent_build_round_duration_seconds",
				Help:    "Duration of a single update_neighbors or add_reverse_edges round",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
			},
			[]string{"phase"},
		),
		BuildVectorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rnndescent_build_vectors_total",
				Help: "Total number of vectors indexed across all builds",
			},
		),

		SearchesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rnndescent_searches_total",
				Help: "Total number of search queries served",
			},
		),
		SearchLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rnndescent_search_latency_seconds",
				Help:    "Per-query search latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		SearchRecall: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rnndescent_search_recall",
				Help:    "Measured recall@1 against ground truth (0-1)",
				Buckets: []float64{.5, .6, .7, .8, .85, .9, .92, .94, .95, .96, .97, .98, .99, 1.0},
			},
		),
		SearchResultSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rnndescent_search_result_size",
				Help:    "Number of results returned per search",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		SearchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rnndescent_search_errors_total",
				Help: "Total number of search errors by error type",
			},
			[]string{"error_type"},
		),

		GraphConnectedComponents: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_graph_connected_components",
				Help: "Number of weakly connected components in the finalized graph",
			},
		),
		GraphMeanOutDegree: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_graph_mean_out_degree",
				Help: "Mean out-degree of the finalized graph",
			},
		),
		GraphMeanInDegree: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_graph_mean_in_degree",
				Help: "Mean in-degree of the finalized graph",
			},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rnndescent_cache_hits_total",
				Help: "Total number of query-cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rnndescent_cache_misses_total",
				Help: "Total number of query-cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_cache_size",
				Help: "Current number of entries in the query cache",
			},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rnndescent_memory_bytes",
				Help: "Resident memory usage in bytes",
			},
		),
	}
}

// RecordBuild records a completed index build.
func (m *Metrics) RecordBuild(duration time.Duration, vectorCount int) {
	m.BuildsTotal.Inc()
	m.BuildDuration.Observe(duration.Seconds())
	m.BuildVectorsTotal.Add(float64(vectorCount))
}

// RecordBuildRound records the duration of a single build phase ("update_neighbors" or "add_reverse_edges").
func (m *Metrics) RecordBuildRound(phase string, duration time.Duration) {
	m.BuildRoundDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordSearch records a search operation.
func (m *Metrics) RecordSearch(duration time.Duration, resultSize int) {
	m.SearchesTotal.Inc()
	m.SearchLatency.Observe(duration.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
}

// RecordSearchRecall records a measured recall@1 sample.
func (m *Metrics) RecordSearchRecall(recall float64) {
	m.SearchRecall.Observe(recall)
}

// RecordSearchError records a search error by type.
func (m *Metrics) RecordSearchError(errorType string) {
	m.SearchErrors.WithLabelValues(errorType).Inc()
}

// UpdateGraphProperties publishes the finalized graph's shape metrics.
func (m *Metrics) UpdateGraphProperties(connectedComponents int, meanOutDegree, meanInDegree float64) {
	m.GraphConnectedComponents.Set(float64(connectedComponents))
	m.GraphMeanOutDegree.Set(meanOutDegree)
	m.GraphMeanInDegree.Set(meanInDegree)
}

// RecordCacheHit records a query-cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a query-cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateCacheSize updates the cache size gauge.
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}

// UpdateGoroutineCount updates the goroutine count gauge.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates the memory usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
