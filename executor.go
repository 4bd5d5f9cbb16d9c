package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ExecOptions controls how countAll schedules and aggregates its tasks.
type ExecOptions struct {
	// Workers is the concurrency cap. 0 launches one goroutine per file,
	// a negative value sizes the pool to runtime.NumCPU().
	Workers int
	Policy  FailurePolicy
}

// poolSize resolves Workers to a concrete pool size, 0 meaning unbounded.
func (o ExecOptions) poolSize() int {
	if o.Workers < 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// countAll counts every file with the given strategy concurrently and returns
// the sum together with the per-file results in launch order.
//
// Every launched task runs to completion. A panic in a task always fails the
// aggregate; per-file I/O errors are handled according to opts.Policy.
func countAll(ctx context.Context, fsys afero.Fs, files []string, strategy Strategy, opts ExecOptions) (uint64, []FileCount, error) {
	count, err := counterFor(strategy)
	if err != nil {
		return 0, nil, err
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	results := make([]FileCount, len(files))
	task := func(i int) {
		results[i] = runCountTask(fsys, files[i], count)
	}

	if size := opts.poolSize(); size > 0 {
		err = fanOutPool(len(files), size, task)
	} else {
		err = fanOut(len(files), task)
	}
	if err != nil {
		return 0, nil, err
	}

	// Walk in launch order so fail-fast reports the first failing file, not
	// the first one to finish.
	var total uint64
	for _, res := range results {
		if res.Err == nil {
			total += res.Lines
			continue
		}
		if errors.Is(res.Err, ErrTaskPanic) || opts.Policy == FailFast {
			return 0, results, res.Err
		}
		logger().Warn().Err(res.Err).Str("path", res.Path).Str("strategy", strategy.String()).
			Msg("could not count file, keeping partial count")
		total += res.Lines
	}

	logger().Debug().Str("strategy", strategy.String()).Int("files", len(files)).Uint64("lines", total).Msg("count finished")
	return total, results, nil
}

// runCountTask counts one file, turning a panic into an error so it reaches
// the aggregator instead of crashing the process.
func runCountTask(fsys afero.Fs, path string, count counterFunc) (res FileCount) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Lines = 0
			res.Err = fmt.Errorf("%w: %s: %v", ErrTaskPanic, path, r)
		}
	}()
	res.Lines, res.Err = count(fsys, path)
	return res
}

// fanOut launches one goroutine per task and waits for all of them.
func fanOut(n int, task func(i int)) error {
	// Tasks never return an error; errgroup is only the join.
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			task(i)
			return nil
		})
	}
	return g.Wait()
}

// fanOutPool runs the tasks on a bounded goroutine pool and waits for all of
// them.
func fanOutPool(n, size int, task func(i int)) error {
	pool, err := ants.NewPool(size)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			task(i)
		}); err != nil {
			// Undo the Add for the task that never ran, then let the ones
			// already queued finish before results is read.
			wg.Done()
			wg.Wait()
			return fmt.Errorf("failed to submit task for file %d: %w", i, err)
		}
	}
	wg.Wait()
	return nil
}
