package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorforge/rnndescent/pkg/observability"
	"github.com/vectorforge/rnndescent/pkg/querycache"
	"github.com/vectorforge/rnndescent/pkg/rnndescent"
)

func newSearchCmd() *cobra.Command {
	var (
		datasetPath string
		queryJSON   string
		queryIndex  int
		topk        int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Build an index over a dataset and search it for one query vector",
		Long:  "Persisting the RNN-Descent graph to disk is out of scope, so search builds the index fresh each invocation before querying it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				datasetPath = cfg.Bench.DatasetPath
			}
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			vectors, err := loadVectors(datasetPath)
			if err != nil {
				return err
			}
			if len(vectors) == 0 {
				return fmt.Errorf("dataset %s contains no vectors", datasetPath)
			}
			dim := len(vectors[0])

			var query []float32
			if queryJSON != "" {
				if err := json.Unmarshal([]byte(queryJSON), &query); err != nil {
					return fmt.Errorf("parsing --query: %w", err)
				}
				if len(query) != dim {
					return fmt.Errorf("query has dimension %d, dataset has dimension %d", len(query), dim)
				}
			} else {
				if queryIndex < 0 || queryIndex >= len(vectors) {
					return fmt.Errorf("--query-index %d out of range [0,%d)", queryIndex, len(vectors))
				}
				query = vectors[queryIndex]
			}

			metrics := observability.NewMetrics()
			store := newStore(cfg, dim)
			ix, err := rnndescent.New(dim, metricFromConfig(cfg), buildParams(cfg), store)
			if err != nil {
				return err
			}
			ix.SetLogger(observability.NewIndexLogger(logger))

			if err := ix.Add(vectors); err != nil {
				return fmt.Errorf("building index: %w", err)
			}

			var cache *querycache.QueryCache
			if cfg.Cache.Enabled {
				cache = querycache.NewQueryCache(cfg.Cache.Capacity, cfg.Cache.TTL)
			}

			labels, distances, err := searchOnce(ix, cache, metrics, query, topk, cfg.Search.SearchL)
			if err != nil {
				return err
			}

			for i, id := range labels {
				fmt.Printf("%2d  id=%-8d distance=%.6f\n", i+1, id, distances[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to a .fvecs or .bvecs vector file")
	cmd.Flags().StringVar(&queryJSON, "query", "", "query vector as a JSON array, e.g. [0.1,0.2,0.3]")
	cmd.Flags().IntVar(&queryIndex, "query-index", 0, "use vectors[query-index] from the dataset as the query, if --query is not set")
	cmd.Flags().IntVar(&topk, "topk", 10, "number of nearest neighbors to return")
	return cmd
}

func searchOnce(ix *rnndescent.Index, cache *querycache.QueryCache, metrics *observability.Metrics, query []float32, topk, searchL int) ([]int32, []float32, error) {
	if cache != nil {
		key := querycache.GenerateVectorQueryKey(query, topk, searchL)
		if result, ok := cache.Get(key); ok {
			metrics.RecordCacheHit()
			return result.Labels, result.Distances, nil
		}
		metrics.RecordCacheMiss()

		start := time.Now()
		labels, distances, err := ix.Search(context.Background(), [][]float32{query}, topk)
		if err != nil {
			metrics.RecordSearchError("search_failed")
			return nil, nil, err
		}
		metrics.RecordSearch(time.Since(start), len(labels[0]))
		cache.Put(key, querycache.Result{Labels: labels[0], Distances: distances[0]})
		return labels[0], distances[0], nil
	}

	start := time.Now()
	labels, distances, err := ix.Search(context.Background(), [][]float32{query}, topk)
	if err != nil {
		metrics.RecordSearchError("search_failed")
		return nil, nil, err
	}
	metrics.RecordSearch(time.Since(start), len(labels[0]))
	return labels[0], distances[0], nil
}
