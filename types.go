package main

import (
	"errors"
	"io/fs"
	"time"
)

// Strategy selects one of the per-file line counting algorithms.
type Strategy int

const (
	StrategyGetline Strategy = iota
	StrategyNcount
	StrategyBuffered
)

// Strategies returns every strategy in benchmark order.
func Strategies() []Strategy {
	return []Strategy{StrategyGetline, StrategyNcount, StrategyBuffered}
}

func (s Strategy) String() string {
	switch s {
	case StrategyGetline:
		return "getline"
	case StrategyNcount:
		return "ncount"
	case StrategyBuffered:
		return "buffered"
	default:
		return "unknown"
	}
}

// countLabel is used in single-strategy output.
func (s Strategy) countLabel() string {
	switch s {
	case StrategyNcount:
		return "ncount method"
	case StrategyBuffered:
		return "buffered ncount method"
	default:
		return "getline method"
	}
}

// benchmarkLabel is used in benchmark output.
func (s Strategy) benchmarkLabel() string {
	switch s {
	case StrategyNcount:
		return "ncounting method"
	case StrategyBuffered:
		return "buffered ncounting method"
	default:
		return "getline method"
	}
}

// FailurePolicy decides what happens to the aggregate when a single file
// cannot be opened or read.
type FailurePolicy int

const (
	// FailSoft logs the error and keeps whatever the file contributed so far.
	FailSoft FailurePolicy = iota
	// FailFast makes the aggregate fail with the first per-file error.
	FailFast
)

var (
	ErrNoDirectory  = errors.New("No directory provided")
	ErrPathNotExist = errors.New("Path does not exist")
	ErrNotDirectory = errors.New("Not a directory")
	ErrTaskPanic    = errors.New("counting task panicked")
)

// FileInfo holds information about a file selected for counting.
type FileInfo struct {
	Path string
	Size int64
	Mode fs.FileMode
}

// FileCount is the resolved result of one counting task.
type FileCount struct {
	Path  string
	Lines uint64 // lines read before Err, if any
	Err   error
}

// BenchmarkEntry is the timing of one strategy over the whole file set.
type BenchmarkEntry struct {
	Strategy Strategy
	Label    string
	Elapsed  time.Duration // mean over Runs
	Total    uint64
	Runs     int
}

// ElapsedMillis returns the elapsed time as fractional milliseconds.
func (e BenchmarkEntry) ElapsedMillis() float64 {
	return float64(e.Elapsed) / float64(time.Millisecond)
}
