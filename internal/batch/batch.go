// Package batch runs the extractor over many detector/OCR payload pairs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/metrics"
	"github.com/MeKo-Tech/rf4catch/internal/payload"
	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
)

// ProcessBatch discovers payload pairs below paths and extracts them in
// parallel.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	logger := config.logger()

	pairs, incomplete, err := discoverPairs(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover payload files: %w", err)
	}
	for _, note := range incomplete {
		logger.Warn("skipping incomplete pair", "pair", note)
	}
	if len(pairs) == 0 {
		return nil, errors.New("no payload pairs found")
	}

	pcfg := config.Pipeline
	pcfg.Logger = logger
	ex, err := pipeline.New(pcfg)
	if err != nil {
		return nil, err
	}

	var progress pipeline.ProgressCallback
	switch {
	case config.ShowProgress && !config.Quiet:
		progress = pipeline.NewConsoleProgressCallback(os.Stderr, "Processing: ").
			WithUpdateInterval(config.ProgressInterval)
	case !config.Quiet:
		progress = pipeline.NewLogProgressCallback(logger, slog.LevelDebug, 10)
	}

	jobs := make([]pipeline.Job, len(pairs))
	for i, p := range pairs {
		p := p
		jobs[i] = func(ctx context.Context) (*pipeline.Result, error) {
			return processPair(ctx, ex, p, config)
		}
	}

	start := time.Now()
	results, errs, runErr := pipeline.RunParallel(ctx, jobs, pipeline.ParallelConfig{
		MaxWorkers:       config.Workers,
		ContinueOnError:  config.ContinueOnError,
		ProgressCallback: progress,
	})
	duration := time.Since(start)

	if config.MetricsFile != "" {
		if err := writeMetrics(config.MetricsFile, results, errs, duration); err != nil {
			logger.Warn("failed to write metrics", "error", err)
		}
	}

	if runErr != nil {
		return nil, fmt.Errorf("batch processing failed: %w", runErr)
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(pairs))

	return &Result{
		Pairs:       pairs,
		Results:     results,
		Errors:      errs,
		Incomplete:  incomplete,
		Duration:    duration,
		WorkerCount: workers,
		Verbose:     config.VerboseOutput,
	}, nil
}

func writeMetrics(path string, results []*pipeline.Result, errs []error, duration time.Duration) error {
	c := metrics.New()
	for i, res := range results {
		if errs[i] != nil {
			var se *payload.StageError
			stage := ""
			if errors.As(errs[i], &se) {
				stage = se.Stage
			}
			c.ObserveError(stage)
			continue
		}
		c.Observe(res)
	}
	c.ObserveBatch(duration)
	return c.WriteTextfile(path)
}
