package batch

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Extraction settings
	Pipeline pipeline.Config

	// Output settings
	Format        string
	OutputFile    string
	VerboseOutput bool
	OverlayDir    string
	RegionColor   color.RGBA
	LineColor     color.RGBA
	MetricsFile   string

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns batch defaults around the default pipeline config.
func DefaultConfig() *Config {
	return &Config{
		Pipeline:         pipeline.DefaultConfig(),
		Format:           pipeline.FormatJSON,
		RegionColor:      pipeline.DefaultRegionColor,
		LineColor:        pipeline.DefaultLineColor,
		Workers:          4,
		ProgressInterval: 100 * time.Millisecond,
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Result holds the result of batch processing. Results and Errors are
// indexed like Pairs; a failed pair has a nil result and a non-nil error.
type Result struct {
	Pairs       []Pair
	Results     []*pipeline.Result
	Errors      []error
	Incomplete  []string
	Duration    time.Duration
	WorkerCount int
	Verbose     bool
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no
// file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(w, output)
	}

	return nil
}

// Stats summarizes the run.
func (r *Result) Stats() pipeline.ParallelStats {
	return pipeline.CalculateParallelStats(r.Results, r.Duration, r.WorkerCount)
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total pairs: %d\n", len(r.Pairs))
	if len(r.Incomplete) > 0 {
		_, _ = fmt.Fprintf(w, "  Skipped (incomplete): %d\n", len(r.Incomplete))
	}
	_, _ = fmt.Fprintf(w, "  Processed: %d\n", stats.Processed)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)
	_, _ = fmt.Fprintf(w, "  Records: %d\n", stats.Records)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", stats.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f pairs/sec\n", stats.ThroughputPerSec)
}
