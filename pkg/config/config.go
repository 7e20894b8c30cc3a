// Package config loads RNN-Descent runtime configuration from environment
// variables and an optional YAML file, with CLI flags (applied by
// cmd/rnndescent) taking final precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full set of knobs cmd/rnndescent needs to build, search,
// and benchmark an index.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Bench   BenchConfig   `yaml:"bench"`
}

// BuildConfig mirrors rnndescent.Params' construction-time fields.
type BuildConfig struct {
	Dimensions int   `yaml:"dimensions"`
	S          int   `yaml:"s"`
	R          int   `yaml:"r"`
	T1         int   `yaml:"t1"`
	T2         int   `yaml:"t2"`
	L          int   `yaml:"l"`
	RandomSeed int64 `yaml:"random_seed"`
	Workers    int   `yaml:"workers"`
}

// SearchConfig mirrors rnndescent.Params' search-time fields.
type SearchConfig struct {
	SearchL int `yaml:"search_l"`
	K0      int `yaml:"k0"`
}

// StorageConfig selects the vector storage backend.
type StorageConfig struct {
	Quantized bool `yaml:"quantized"` // use storage.ScalarQuantized instead of storage.Flat
	Metric    string `yaml:"metric"`  // "l2" or "inner_product"
}

// CacheConfig controls the optional query-result cache in front of Search.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// BenchConfig controls the internal/bench harness invoked by `rnndescent bench`.
type BenchConfig struct {
	DatasetPath    string `yaml:"dataset_path"`
	QueriesPath    string `yaml:"queries_path"`
	GroundTruthPath string `yaml:"groundtruth_path"`
	OutputPath     string `yaml:"output_path"`
}

// Default returns the recommended configuration.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Dimensions: 128,
			S:          16,
			R:          96,
			T1:         4,
			T2:         15,
			L:          8,
			RandomSeed: 2021,
			Workers:    0, // 0 => runtime.GOMAXPROCS(0), resolved by rnndescent.DefaultParams
		},
		Search: SearchConfig{
			SearchL: 20,
			K0:      10,
		},
		Storage: StorageConfig{
			Quantized: false,
			Metric:    "l2",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		Bench: BenchConfig{
			OutputPath: "./bench_results.json",
		},
	}
}

// LoadFromFile reads a YAML config file on top of Default(), leaving any
// field the file omits at its default value.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides on top of cfg (or
// Default() if cfg is nil), matching the RNNDESCENT_ prefix convention.
func LoadFromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = Default()
	}

	if v := os.Getenv("RNNDESCENT_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.Dimensions = n
		}
	}
	if v := os.Getenv("RNNDESCENT_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.S = n
		}
	}
	if v := os.Getenv("RNNDESCENT_R"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.R = n
		}
	}
	if v := os.Getenv("RNNDESCENT_T1"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.T1 = n
		}
	}
	if v := os.Getenv("RNNDESCENT_L"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.L = n
		}
	}
	if v := os.Getenv("RNNDESCENT_T2"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.T2 = n
		}
	}
	if v := os.Getenv("RNNDESCENT_RANDOM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Build.RandomSeed = n
		}
	}
	if v := os.Getenv("RNNDESCENT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Build.Workers = n
		}
	}
	if v := os.Getenv("RNNDESCENT_SEARCH_L"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.SearchL = n
		}
	}
	if v := os.Getenv("RNNDESCENT_K0"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.K0 = n
		}
	}
	if v := os.Getenv("RNNDESCENT_QUANTIZED"); v == "true" {
		cfg.Storage.Quantized = true
	}
	if v := os.Getenv("RNNDESCENT_METRIC"); v != "" {
		cfg.Storage.Metric = v
	}
	if v := os.Getenv("RNNDESCENT_CACHE_ENABLED"); v == "false" {
		cfg.Cache.Enabled = false
	}
	if v := os.Getenv("RNNDESCENT_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Capacity = n
		}
	}
	if v := os.Getenv("RNNDESCENT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("RNNDESCENT_DATASET_PATH"); v != "" {
		cfg.Bench.DatasetPath = v
	}
	if v := os.Getenv("RNNDESCENT_QUERIES_PATH"); v != "" {
		cfg.Bench.QueriesPath = v
	}
	if v := os.Getenv("RNNDESCENT_GROUNDTRUTH_PATH"); v != "" {
		cfg.Bench.GroundTruthPath = v
	}
	if v := os.Getenv("RNNDESCENT_OUTPUT_PATH"); v != "" {
		cfg.Bench.OutputPath = v
	}

	return cfg
}

// Validate reports the first invalid field found, if any.
func (c *Config) Validate() error {
	if c.Build.Dimensions < 1 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Build.Dimensions)
	}
	if c.Build.S < 1 {
		return fmt.Errorf("invalid S: %d (must be > 0)", c.Build.S)
	}
	if c.Build.R < c.Build.S {
		return fmt.Errorf("invalid R: %d (must be >= S=%d)", c.Build.R, c.Build.S)
	}
	if c.Build.T1 < 1 {
		return fmt.Errorf("invalid T1: %d (must be > 0)", c.Build.T1)
	}
	if c.Build.T2 < 1 {
		return fmt.Errorf("invalid T2: %d (must be > 0)", c.Build.T2)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must be >= 0)", c.Build.Workers)
	}
	if c.Search.SearchL < 1 {
		return fmt.Errorf("invalid searchL: %d (must be > 0)", c.Search.SearchL)
	}
	if c.Search.K0 < 1 {
		return fmt.Errorf("invalid k0: %d (must be > 0)", c.Search.K0)
	}
	if c.Storage.Metric != "l2" && c.Storage.Metric != "inner_product" {
		return fmt.Errorf("invalid metric: %q (must be \"l2\" or \"inner_product\")", c.Storage.Metric)
	}
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}
	return nil
}
