// Command rnndescent builds and searches RNN-Descent approximate
// nearest-neighbor graph indexes, and benchmarks them against the
// comparator algorithms in pkg/hnsw, pkg/nsg, pkg/ivf, pkg/diskann and
// pkg/scann.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorforge/rnndescent/pkg/config"
	"github.com/vectorforge/rnndescent/pkg/observability"
)

const version = "0.1.0"

var (
	cfgPath string
	cfg     *config.Config
	logger  *observability.Logger
)

func main() {
	root := &cobra.Command{
		Use:     "rnndescent",
		Short:   "RNN-Descent approximate nearest-neighbor graph index",
		Long:    "rnndescent builds and searches concurrent RNN-Descent graph indexes over flat or scalar-quantized vector storage, and benchmarks them against HNSW, NSG, IVF-PQ, DiskANN and ScaNN.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgPath != "" {
				cfg, err = config.LoadFromFile(cfgPath)
				if err != nil {
					return err
				}
			} else {
				cfg = config.Default()
			}
			cfg = config.LoadFromEnv(cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger = observability.NewDefaultLogger()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (optional; env vars and flags still apply on top)")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newBenchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
