// Command anndata inspects and converts annotated data matrices between
// h5ad, zarr, loom and CSV.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/anndata/internal/config"
	"github.com/katalvlaran/anndata/metrics"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	showMetrics bool
	timeout     time.Duration

	// Set up by PersistentPreRunE
	logger    *zap.Logger
	cfg       *config.Config
	collector *metrics.Collector
	registry  *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:           "anndata",
	Short:         "Inspect and convert annotated data matrices",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if logger, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		collector = metrics.New()
		registry = prometheus.NewRegistry()
		registry.MustRegister(collector)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if !showMetrics || registry == nil {
			return nil
		}
		return printMetrics(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "anndata.yaml", "Config file (defaults apply when missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print operation counters on exit")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Target format: h5ad, zarr, loom or csv (default: from extension)")
	exportCmd.Flags().BoolVar(&withMatrix, "with-matrix", false, "Also write X.csv")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printMetrics(cmd *cobra.Command) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
			return err
		}
	}
	return nil
}
