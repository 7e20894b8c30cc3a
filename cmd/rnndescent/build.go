package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorforge/rnndescent/pkg/observability"
	"github.com/vectorforge/rnndescent/pkg/rnndescent"
)

func newBuildCmd() *cobra.Command {
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an RNN-Descent index from a dataset and report its shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				datasetPath = cfg.Bench.DatasetPath
			}
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required (or set bench.dataset_path / RNNDESCENT_DATASET_PATH)")
			}

			vectors, err := loadVectors(datasetPath)
			if err != nil {
				return err
			}
			if len(vectors) == 0 {
				return fmt.Errorf("dataset %s contains no vectors", datasetPath)
			}
			dim := len(vectors[0])

			metrics := observability.NewMetrics()
			store := newStore(cfg, dim)
			params := buildParams(cfg)
			params.RandomSeed = cfg.Build.RandomSeed

			ix, err := rnndescent.New(dim, metricFromConfig(cfg), params, store)
			if err != nil {
				return fmt.Errorf("constructing index: %w", err)
			}
			ix.SetLogger(observability.NewIndexLogger(logger))

			logger.Info("starting build", map[string]interface{}{
				"dataset":    datasetPath,
				"dimensions": dim,
				"n":          len(vectors),
			})

			start := time.Now()
			if err := ix.Add(vectors); err != nil {
				return fmt.Errorf("building index: %w", err)
			}
			elapsed := time.Since(start)
			metrics.RecordBuild(elapsed, len(vectors))

			props := ix.GraphProperties()
			metrics.UpdateGraphProperties(props.ConnectedComponents, props.MeanOutDegree, props.MeanInDegree)

			fmt.Printf("Built index over %d vectors (dim=%d) in %s\n", len(vectors), dim, elapsed.Round(time.Millisecond))
			fmt.Printf("  connected components: %d\n", props.ConnectedComponents)
			fmt.Printf("  out-degree: min=%d mean=%.2f max=%d\n", props.MinOutDegree, props.MeanOutDegree, props.MaxOutDegree)
			fmt.Printf("  in-degree:  min=%d mean=%.2f max=%d\n", props.MinInDegree, props.MeanInDegree, props.MaxInDegree)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to a .fvecs or .bvecs vector file")
	return cmd
}
