package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
)

// BenchmarkOptions configures a benchmark run.
type BenchmarkOptions struct {
	Exec ExecOptions
	// Runs is the number of timed runs per strategy. Values below 1 mean 1.
	Runs int
}

// benchmark runs every strategy over files one after another, timing each
// full fan-out and aggregate. Totals are reported as computed, never
// reconciled.
func benchmark(ctx context.Context, fsys afero.Fs, files []string, opts BenchmarkOptions) ([]BenchmarkEntry, error) {
	runs := opts.Runs
	if runs < 1 {
		runs = 1
	}

	entries := make([]BenchmarkEntry, 0, len(Strategies()))
	for _, strategy := range Strategies() {
		var elapsed time.Duration
		var total uint64
		for run := 0; run < runs; run++ {
			start := time.Now()
			t, _, err := countAll(ctx, fsys, files, strategy, opts.Exec)
			elapsed += time.Since(start)
			if err != nil {
				return entries, fmt.Errorf("benchmark %s: %w", strategy, err)
			}
			total = t
		}

		entry := BenchmarkEntry{
			Strategy: strategy,
			Label:    strategy.benchmarkLabel(),
			Elapsed:  elapsed / time.Duration(runs),
			Total:    total,
			Runs:     runs,
		}
		logger().Debug().Str("strategy", strategy.String()).Dur("elapsed", entry.Elapsed).Uint64("lines", total).Msg("benchmark step finished")
		entries = append(entries, entry)
	}

	if !entriesAgree(entries) {
		logger().Warn().Msg("strategies disagree on the total line count")
	}
	return entries, nil
}

// entriesAgree reports whether every entry has the same total.
func entriesAgree(entries []BenchmarkEntry) bool {
	for _, e := range entries[min(1, len(entries)):] {
		if e.Total != entries[0].Total {
			return false
		}
	}
	return true
}
