package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for parallel processing.
type ParallelConfig struct {
	MaxWorkers       int              // Number of parallel workers (0 = runtime.NumCPU())
	ContinueOnError  bool             // Keep going after a failed job
	ProgressCallback ProgressCallback // Optional progress reporting
}

// DefaultParallelConfig returns defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

// Job produces the result for one unit of work.
type Job func(ctx context.Context) (*Result, error)

type jobItem struct {
	index int
	run   Job
}

type jobResult struct {
	index  int
	result *Result
	err    error
}

// RunParallel runs jobs on a worker pool. Results and per-job errors are
// returned in job order. Unless ContinueOnError is set, the first failure
// cancels the jobs that have not started yet and is returned as err.
func RunParallel(ctx context.Context, jobs []Job, config ParallelConfig) ([]*Result, []error, error) {
	if len(jobs) == 0 {
		return nil, nil, nil
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	if config.MaxWorkers > len(jobs) {
		config.MaxWorkers = len(jobs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(len(jobs))
		defer config.ProgressCallback.OnComplete()
	}

	queue := make(chan jobItem, len(jobs))
	results := make(chan jobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < config.MaxWorkers; i++ {
		wg.Add(1)
		go worker(ctx, queue, results, &wg)
	}

	// Send jobs
	go func() {
		defer close(queue)
		for i, j := range jobs {
			select {
			case queue <- jobItem{index: i, run: j}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	var firstErr error
	processed := 0

	for r := range results {
		ordered[r.index] = r.result
		errs[r.index] = r.err
		processed++

		if r.err != nil {
			if config.ProgressCallback != nil {
				config.ProgressCallback.OnError(r.index, r.err)
			}
			if !config.ContinueOnError && firstErr == nil {
				firstErr = fmt.Errorf("job %d: %w", r.index, r.err)
				cancel()
			}
		}
		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(processed, len(jobs))
		}
	}

	if firstErr != nil {
		return ordered, errs, firstErr
	}
	if err := ctx.Err(); err != nil {
		return ordered, errs, err
	}
	return ordered, errs, nil
}

func worker(ctx context.Context, queue <-chan jobItem, results chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-queue:
			if !ok {
				return
			}
			if err := ctx.Err(); err != nil {
				results <- jobResult{index: job.index, err: err}
				continue
			}
			res, err := job.run(ctx)
			results <- jobResult{index: job.index, result: res, err: err}
		case <-ctx.Done():
			return
		}
	}
}

// ParallelStats holds statistics about a parallel run.
type ParallelStats struct {
	Total            int           `json:"total"`
	Processed        int           `json:"processed"`
	Failed           int           `json:"failed"`
	Records          int           `json:"records"`
	WorkerCount      int           `json:"worker_count"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AveragePerJob    time.Duration `json:"average_per_job_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"`
}

// CalculateParallelStats summarizes results of a parallel run.
func CalculateParallelStats(results []*Result, duration time.Duration, workerCount int) ParallelStats {
	stats := ParallelStats{Total: len(results), WorkerCount: workerCount, TotalDuration: duration}
	for _, r := range results {
		if r == nil {
			stats.Failed++
			continue
		}
		stats.Processed++
		stats.Records += len(r.Records)
	}
	if stats.Processed > 0 && duration > 0 {
		stats.AveragePerJob = duration / time.Duration(stats.Processed)
		stats.ThroughputPerSec = float64(stats.Processed) / duration.Seconds()
	}
	return stats
}
