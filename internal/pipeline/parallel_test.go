package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/rf4catch/internal/catch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsJob(id string, n int) Job {
	return func(context.Context) (*Result, error) {
		recs := make([]catch.Record, n)
		return &Result{RunID: id, Records: recs}, nil
	}
}

func failingJob(err error) Job {
	return func(context.Context) (*Result, error) { return nil, err }
}

type recordingProgress struct {
	mu       sync.Mutex
	total    int
	progress []int
	errors   []int
	done     bool
}

func (r *recordingProgress) OnStart(total int) { r.total = total }

func (r *recordingProgress) OnProgress(current, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, current)
}

func (r *recordingProgress) OnComplete() { r.done = true }

func (r *recordingProgress) OnError(index int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, index)
}

func TestRunParallel_PreservesOrder(t *testing.T) {
	jobs := make([]Job, 20)
	for i := range jobs {
		id := string(rune('a' + i))
		delay := time.Duration(20-i) * time.Millisecond
		jobs[i] = func(context.Context) (*Result, error) {
			time.Sleep(delay)
			return &Result{RunID: id}, nil
		}
	}

	progress := &recordingProgress{}
	results, errs, err := RunParallel(context.Background(), jobs, ParallelConfig{MaxWorkers: 4, ProgressCallback: progress})
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, string(rune('a'+i)), r.RunID)
		assert.NoError(t, errs[i])
	}

	assert.Equal(t, 20, progress.total)
	assert.Len(t, progress.progress, 20)
	assert.Equal(t, 20, progress.progress[19])
	assert.True(t, progress.done)
	assert.Empty(t, progress.errors)
}

func TestRunParallel_Empty(t *testing.T) {
	results, errs, err := RunParallel(context.Background(), nil, DefaultParallelConfig())
	assert.NoError(t, err)
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestRunParallel_ContinueOnError(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job{recordsJob("a", 1), failingJob(boom), recordsJob("c", 2)}

	progress := &recordingProgress{}
	results, errs, err := RunParallel(context.Background(), jobs, ParallelConfig{
		MaxWorkers:       2,
		ContinueOnError:  true,
		ProgressCallback: progress,
	})
	require.NoError(t, err)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
	assert.ErrorIs(t, errs[1], boom)
	assert.Equal(t, []int{1}, progress.errors)
}

func TestRunParallel_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32

	jobs := []Job{failingJob(boom)}
	for i := 0; i < 50; i++ {
		jobs = append(jobs, func(ctx context.Context) (*Result, error) {
			ran.Add(1)
			time.Sleep(time.Millisecond)
			return &Result{}, ctx.Err()
		})
	}

	_, errs, err := RunParallel(context.Background(), jobs, ParallelConfig{MaxWorkers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "job 0")
	assert.ErrorIs(t, errs[0], boom)
	assert.Less(t, int(ran.Load()), 50, "remaining jobs are cancelled")
}

func TestRunParallel_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := RunParallel(ctx, []Job{recordsJob("a", 1)}, ParallelConfig{MaxWorkers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateParallelStats(t *testing.T) {
	results := []*Result{
		{Records: make([]catch.Record, 2)},
		nil,
		{Records: make([]catch.Record, 3)},
	}

	stats := CalculateParallelStats(results, 2*time.Second, 4)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 5, stats.Records)
	assert.Equal(t, 4, stats.WorkerCount)
	assert.Equal(t, time.Second, stats.AveragePerJob)
	assert.InDelta(t, 1.0, stats.ThroughputPerSec, 1e-9)

	empty := CalculateParallelStats(nil, 0, 1)
	assert.Zero(t, empty.AveragePerJob)
	assert.Zero(t, empty.ThroughputPerSec)
}

func TestConsoleProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	cb := NewConsoleProgressCallback(&buf, "files ").WithUpdateInterval(0)

	cb.OnStart(2)
	cb.OnProgress(1, 2)
	cb.OnError(1, errors.New("x"))
	cb.OnProgress(2, 2)
	cb.OnComplete()

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "files 0/2"))
	assert.Contains(t, out, "\rfiles 1/2")
	assert.Contains(t, out, "\rfiles 2/2 (1 failed)")
	assert.Contains(t, out, "files Completed in")
}

func TestLogProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cb := NewLogProgressCallback(logger, slog.LevelInfo, 2)

	cb.OnStart(3)
	cb.OnProgress(1, 3)
	cb.OnProgress(2, 3)
	cb.OnProgress(3, 3)
	cb.OnError(0, errors.New("bad payload"))
	cb.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "batch started")
	assert.Equal(t, 2, strings.Count(out, "batch progress"), "every second job and the last one")
	assert.Contains(t, out, "bad payload")
	assert.Contains(t, out, "batch completed")
}
