package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vectorforge/rnndescent/internal/dataset"
	"github.com/vectorforge/rnndescent/pkg/config"
	"github.com/vectorforge/rnndescent/pkg/rnndescent"
	"github.com/vectorforge/rnndescent/pkg/storage"
)

// loadVectors dispatches on path's extension to the matching internal/dataset
// loader. .ivecs files are only meaningful as ground-truth id lists, so they
// are not accepted here.
func loadVectors(path string) ([][]float32, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fvecs":
		return dataset.LoadFvecs(path)
	case ".bvecs":
		return dataset.LoadBvecs(path)
	default:
		return nil, fmt.Errorf("unrecognized vector file extension %q (expected .fvecs or .bvecs)", path)
	}
}

// buildParams maps the config's Build/Search sections onto rnndescent.Params.
func buildParams(c *config.Config) rnndescent.Params {
	return rnndescent.Params{
		S:          c.Build.S,
		R:          c.Build.R,
		T1:         c.Build.T1,
		T2:         c.Build.T2,
		L:          c.Build.L,
		RandomSeed: c.Build.RandomSeed,
		Workers:    c.Build.Workers,
		SearchL:    c.Search.SearchL,
		K0:         c.Search.K0,
	}
}

// metricFromConfig maps the config's string metric name onto rnndescent.Metric.
func metricFromConfig(c *config.Config) rnndescent.Metric {
	if c.Storage.Metric == "inner_product" {
		return rnndescent.MetricInnerProduct
	}
	return rnndescent.MetricL2
}

// newStore constructs the VectorStorage backend the config selects.
func newStore(c *config.Config, dim int) rnndescent.VectorStorage {
	metric := metricFromConfig(c)
	if c.Storage.Quantized {
		return storage.NewScalarQuantized(dim, metric)
	}
	return storage.NewFlat(dim, metric)
}
