package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vectorforge/rnndescent/internal/bench"
	"github.com/vectorforge/rnndescent/internal/dataset"
	"github.com/vectorforge/rnndescent/internal/quantization"
	"github.com/vectorforge/rnndescent/pkg/diskann"
	"github.com/vectorforge/rnndescent/pkg/hnsw"
	"github.com/vectorforge/rnndescent/pkg/ivf"
	"github.com/vectorforge/rnndescent/pkg/nsg"
	"github.com/vectorforge/rnndescent/pkg/scann"
)

func newBenchCmd() *cobra.Command {
	var (
		datasetPath     string
		queriesPath     string
		groundTruthPath string
		outputPath      string
		methodsCSV      string
		topk            int
		maxQPS          float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark RNN-Descent against the comparator algorithms on a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				datasetPath = cfg.Bench.DatasetPath
			}
			if queriesPath == "" {
				queriesPath = cfg.Bench.QueriesPath
			}
			if groundTruthPath == "" {
				groundTruthPath = cfg.Bench.GroundTruthPath
			}
			if outputPath == "" {
				outputPath = cfg.Bench.OutputPath
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

			var queries [][]float32
			if queriesPath != "" {
				queries, err = loadVectors(queriesPath)
				if err != nil {
					return err
				}
			} else {
				n := 100
				if n > len(vectors) {
					n = len(vectors)
				}
				queries = vectors[:n]
			}

			var truth bench.GroundTruth
			if groundTruthPath != "" {
				rows, err := dataset.LoadIvecs(groundTruthPath)
				if err != nil {
					return err
				}
				truth = make(bench.GroundTruth, len(rows))
				for i, row := range rows {
					if len(row) > 0 {
						truth[i] = int32(row[0])
					}
				}
			} else {
				// No ground truth supplied: when queries are a prefix of the
				// dataset, a query vector is trivially its own nearest neighbor.
				truth = make(bench.GroundTruth, len(queries))
				for i := range truth {
					truth[i] = int32(i)
				}
			}

			methods := buildMethods(strings.Split(methodsCSV, ","), dim, len(vectors))
			k0 := cfg.Search.K0
			if topk > 0 {
				k0 = topk
			}
			points := []bench.SearchPoint{{SearchL: cfg.Search.SearchL, K0: k0, MaxQPS: maxQPS}}

			var reports []*bench.Report
			for _, m := range methods {
				logger.Info("benchmarking method", map[string]interface{}{"method": m.Name()})
				report, err := bench.Run(datasetPath, m, vectors, queries, truth, points, map[string]any{
					"s": cfg.Build.S, "r": cfg.Build.R, "t1": cfg.Build.T1, "t2": cfg.Build.T2,
				})
				if err != nil {
					logger.Error("benchmark failed", map[string]interface{}{"method": m.Name(), "error": err.Error()})
					continue
				}
				reports = append(reports, report)
				fmt.Printf("%-10s  build=%.3fs  qps=%.1f  recall@1=%.3f\n",
					report.Method, report.ConstructionTimeSec,
					report.SearchPerformances[0].QPS, report.SearchPerformances[0].RecallAt1)
			}

			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling reports: %w", err)
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outputPath, err)
			}
			fmt.Printf("\nWrote %d report(s) to %s\n", len(reports), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to a .fvecs or .bvecs vector file")
	cmd.Flags().StringVar(&queriesPath, "queries", "", "path to a query vector file (defaults to the first 100 dataset vectors)")
	cmd.Flags().StringVar(&groundTruthPath, "groundtruth", "", "path to a .ivecs ground-truth file (first column per row is used)")
	cmd.Flags().StringVar(&outputPath, "output", "", "path to write the JSON report array")
	cmd.Flags().StringVar(&methodsCSV, "methods", "rnndescent,hnsw,nsg,ivf_pq,ivf_flat,diskann,scann", "comma-separated list of methods to benchmark")
	cmd.Flags().IntVar(&topk, "topk", 1, "value recorded as k0 in the report's search point (recall is always measured at top-1)")
	cmd.Flags().Float64Var(&maxQPS, "max-qps", 0, "cap the query rate during measurement to emulate a production load ceiling (0 = unthrottled)")
	return cmd
}

// buildMethods constructs one bench.Method per requested name, using
// DefaultConfig() from each comparator package seeded with this run's
// dimensionality and dataset size where the config requires it.
func buildMethods(names []string, dim, n int) []bench.Method {
	methods := make([]bench.Method, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case "rnndescent":
			methods = append(methods, &bench.RNNDescentMethod{
				Dim:    dim,
				Metric: metricFromConfig(cfg),
				Params: buildParams(cfg),
			})
		case "hnsw":
			methods = append(methods, &bench.HNSWMethod{
				Config:   hnsw.DefaultConfig(),
				EfSearch: cfg.Search.SearchL,
			})
		case "nsg":
			methods = append(methods, &bench.NSGMethod{Cfg: nsg.DefaultConfig()})
		case "ivf_pq":
			c := ivf.ConfigPQ{
				NumCentroids:  clampCentroids(n),
				NumSubvectors: subvectorCount(dim),
				BitsPerCode:   8,
				Metric:        quantization.EuclideanDistance,
				TrainConfig:   quantization.DefaultConfig(),
			}
			methods = append(methods, &bench.IVFPQMethod{Cfg: c, Nprobe: 8})
		case "ivf_flat":
			methods = append(methods, &bench.IVFFlatMethod{
				Cfg:    ivf.Config{NumCentroids: clampCentroids(n), Metric: quantization.EuclideanDistance},
				Nprobe: 8,
			})
		case "diskann":
			methods = append(methods, &bench.DiskANNMethod{Cfg: diskann.DefaultConfig()})
		case "scann":
			methods = append(methods, &bench.ScaNNMethod{Cfg: scann.DefaultConfig(), Nprobe: 8})
		default:
			logger.Warn("unknown benchmark method, skipping", map[string]interface{}{"method": name})
		}
	}
	return methods
}

// clampCentroids picks a cluster count near sqrt(n), the standard IVF rule
// of thumb, bounded to a sane range for small benchmark datasets.
func clampCentroids(n int) int {
	c := int(math.Sqrt(float64(n)))
	if c < 8 {
		c = 8
	}
	if c > 256 {
		c = 256
	}
	return c
}

// subvectorCount picks the largest divisor of dim that is <= 16, since
// ProductQuantizer.Train requires dim to be evenly divisible by the
// subvector count. Falls back to 1 (no splitting) for prime dimensions.
func subvectorCount(dim int) int {
	for m := 16; m >= 1; m-- {
		if dim%m == 0 {
			return m
		}
	}
	return 1
}
