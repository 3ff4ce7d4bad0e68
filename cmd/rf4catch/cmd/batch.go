package cmd

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/batch"
	"github.com/MeKo-Tech/rf4catch/internal/config"
	"github.com/spf13/cobra"
)

// batchCmd extracts every payload pair found below the given paths.
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Extract catch records from many payload pairs in parallel",
	Long: `Find <name>.det.json and <name>.ocr.json pairs in the given files and
directories and extract them on a pool of workers. Pairs missing a partner
are reported and skipped. Results keep discovery order.

Examples:
  rf4catch batch shots/
  rf4catch batch shots/ --recursive --workers 8 --format csv --output catches.csv
  rf4catch batch shots/ --overlay-dir overlays/ --metrics-file /var/lib/node_exporter/rf4catch.prom`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps the resolved configuration plus explicitly set
// flags to batch.Config.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) (*batch.Config, error) {
	applyExtractFlags(cfg, cmd)

	if cmd.Flags().Changed("overlay-dir") {
		cfg.Output.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.Batch.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	if cmd.Flags().Changed("recursive") {
		cfg.Batch.Recursive, _ = cmd.Flags().GetBool("recursive")
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Batch.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	batchConfig, err := cfg.ToBatchConfig()
	if err != nil {
		return nil, err
	}

	// File discovery and progress settings are CLI-only
	batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")
	batchConfig.Logger = slog.Default()

	return batchConfig, nil
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := *GetConfig()
	batchConfig, err := configToBatchConfig(&cfg, cmd)
	if err != nil {
		return err
	}

	result, err := batch.ProcessBatch(cmd.Context(), args, batchConfig)
	if err != nil {
		return err
	}

	if err := result.SaveResults(cmd.OutOrStdout(), batchConfig.Format, batchConfig.OutputFile, batchConfig.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		result.PrintStats(cmd.ErrOrStderr(), batchConfig.Quiet)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addExtractionFlags(batchCmd)
	batchCmd.Flags().String("overlay-dir", "", "write <name>_overlay.png for pairs with a <name>.png or .jpg screenshot")
	batchCmd.Flags().String("metrics-file", "", "write prometheus metrics in textfile format to this path")

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default from config: 4, max useful: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing after a pair fails")

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", []string{}, "file name patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file name patterns to exclude")

	// Progress and monitoring flags
	batchCmd.Flags().Bool("progress", false, "show progress on stderr")
	batchCmd.Flags().Bool("quiet", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "show processing statistics on stderr")
	batchCmd.Flags().Duration("progress-interval", 500*time.Millisecond, "progress update interval")
}
