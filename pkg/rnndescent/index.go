package rnndescent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// VectorStorage owns the raw vectors behind an Index and manufactures the
// DistanceComputers that the build and search algorithms consume. A single
// VectorStorage instance is shared read-only across goroutines once built;
// NewDistanceComputer must return an independent instance per caller.
type VectorStorage interface {
	Dim() int
	Len() int
	Add(vectors [][]float32) error
	Reconstruct(id int32) ([]float32, error)
	NewDistanceComputer() DistanceComputer
	Reset()
}

// Logger is the narrow structured-logging contract Index needs; it matches
// the subset of pkg/observability.Logger that Add's rebuild-warning path
// exercises.
type Logger interface {
	Warn(msg string, fields map[string]any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, map[string]any) {}

// Index ties a VectorStorage, a Builder, and a Searcher together behind a
// single facade, matching the original's RNNDescent + IndexRNNDescent split
// but collapsed into one type since Go has no analog to faiss's Index base
// class hierarchy.
type Index struct {
	dim    int
	metric Metric
	params Params
	store  VectorStorage
	logger Logger

	mu     sync.RWMutex
	graph  *csrGraph
	ntotal int
}

// New creates an empty Index over the given dimensionality and metric.
// store backs vector storage and is required; a nil store returns
// ErrInvalidConfig (pkg/storage provides Flat and ScalarQuantized).
func New(dim int, metric Metric, params Params, store VectorStorage) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dim must be positive, got %d", ErrInvalidConfig, dim)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: a VectorStorage is required", ErrInvalidConfig)
	}
	if params.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, params.Workers)
	}
	return &Index{
		dim:    dim,
		metric: metric,
		params: params.withDefaults(),
		store:  store,
		logger: noopLogger{},
	}, nil
}

// SetLogger installs a structured logger used for the Add rebuild warning.
func (ix *Index) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	ix.logger = l
}

// Ntotal returns the number of vectors currently indexed.
func (ix *Index) Ntotal() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ntotal
}

// Add appends vectors to the index and rebuilds the graph over the combined
// set. Calling Add on a non-empty index is tolerated but discouraged: the
// original has no incremental-insert path, so this rebuilds from scratch and
// emits a warning, matching the documented Non-goal (no dynamic
// insert/delete).
func (ix *Index) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return ErrEmptyInput
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.ntotal > 0 {
		ix.logger.Warn("rebuilding rnndescent index on non-empty Add", map[string]any{
			"existing_vectors": ix.ntotal,
			"added_vectors":    len(vectors),
		})
	}

	if err := ix.store.Add(vectors); err != nil {
		return fmt.Errorf("rnndescent: storing vectors: %w", err)
	}

	n := ix.store.Len()
	builder := NewBuilder(ix.params, ix.store.NewDistanceComputer)
	ix.graph = builder.Build(n)
	ix.ntotal = n
	return nil
}

// Reset discards the graph and all stored vectors.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.store.Reset()
	ix.graph = nil
	ix.ntotal = 0
}

// Reconstruct returns the stored vector for id, un-doing any storage-side
// transform (e.g. dequantizing) but not the metric sign flip.
func (ix *Index) Reconstruct(id int32) ([]float32, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.graph == nil {
		return nil, ErrNotBuilt
	}
	return ix.store.Reconstruct(id)
}

// searchHint is the query-count cooperative-cancellation period, mirroring
// faiss's InterruptCallback::get_period_hint(d * search_l).
func (ix *Index) searchHint() int {
	hint := ix.dim * ix.params.SearchL
	if hint < 1 {
		hint = 1
	}
	return hint
}

// Search answers topk nearest neighbors for each query, parallelized across
// queries with one DistanceComputer and one VisitedSet per goroutine. ctx is
// checked every searchHint() queries; on cancellation, already-completed
// queries are returned alongside the context error.
func (ix *Index) Search(ctx context.Context, queries [][]float32, topk int) (labels [][]int32, distances [][]float32, err error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, nil, ErrNotBuilt
	}
	if topk <= 0 {
		return nil, nil, fmt.Errorf("%w: topk must be positive", ErrInvalidConfig)
	}
	if topk > ix.ntotal {
		return nil, nil, ErrTopKTooLarge
	}
	if len(queries) == 0 {
		return nil, nil, nil
	}

	labels = make([][]int32, len(queries))
	distances = make([][]float32, len(queries))
	searcher := NewSearcher(ix.graph, ix.params)

	workers := ix.params.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(queries) {
		workers = len(queries)
	}

	hint := ix.searchHint()
	var cancelled bool
	var cancelMu sync.Mutex

	type qstate struct {
		rng *rand.Rand
		vt  *VisitedSet
	}
	parallelChunksState(len(queries), workers, hint, func(workerIdx int) qstate {
		return qstate{
			rng: rand.New(rand.NewSource(ix.params.RandomSeed + int64(workerIdx))),
			vt:  NewVisitedSet(ix.ntotal),
		}
	}, func(lo, hi int, st qstate) {
		cancelMu.Lock()
		stop := cancelled
		cancelMu.Unlock()
		if stop {
			return
		}
		select {
		case <-ctx.Done():
			cancelMu.Lock()
			cancelled = true
			cancelMu.Unlock()
			return
		default:
		}

		dist := ix.store.NewDistanceComputer()
		for i := lo; i < hi; i++ {
			dist.SetQuery(queries[i])
			ids, ds := searcher.Search(dist, st.vt, st.rng, topk)
			if ix.metric == MetricInnerProduct {
				for j := range ds {
					ds[j] = -ds[j]
				}
			}
			labels[i] = ids
			distances[i] = ds
		}
	})

	if ctx.Err() != nil {
		return labels, distances, ctx.Err()
	}
	return labels, distances, nil
}
