package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// ncountBufferSize is the block size used by the buffered strategy.
const ncountBufferSize = 1 << 20 // 1 MiB

// counterFunc counts the lines of a single file.
//
// A line is a run of bytes terminated by '\n', or a non-empty run at end of
// file without one. All strategies follow this, so "a\nb" is 2 lines.
// On error the count read so far is returned alongside it.
type counterFunc func(fsys afero.Fs, path string) (uint64, error)

// counterFor maps a strategy to its counting function.
func counterFor(s Strategy) (counterFunc, error) {
	switch s {
	case StrategyGetline:
		return countLinesGetline, nil
	case StrategyNcount:
		return countLinesNcount, nil
	case StrategyBuffered:
		return countLinesBuffered, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %d", int(s))
	}
}

// countLinesGetline reads the file one record at a time, allocating a string
// per line. Simplest and slowest; used by default.
func countLinesGetline(fsys afero.Fs, path string) (uint64, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var lines uint64
	for {
		line, err := reader.ReadString('\n')
		// An unterminated tail comes back together with io.EOF.
		if len(line) > 0 {
			lines++
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, fmt.Errorf("read %s: %w", path, err)
		}
	}
}

// countLinesNcount walks the file byte by byte counting '\n'.
func countLinesNcount(fsys afero.Fs, path string) (uint64, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var lines uint64
	// last starts as '\n' so an empty file adds nothing at EOF.
	last := byte('\n')
	for {
		b, err := reader.ReadByte()
		if err != nil {
			// Bytes after the final '\n' still make a line, also when the
			// read failed part way through.
			if last != '\n' {
				lines++
			}
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, fmt.Errorf("read %s: %w", path, err)
		}
		if b == '\n' {
			lines++
		}
		last = b
	}
}

// countLinesBuffered fills a 1 MiB block at a time and counts '\n' in the
// bytes each read actually returned.
func countLinesBuffered(fsys afero.Fs, path string) (uint64, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	buf := make([]byte, ncountBufferSize)
	var lines uint64
	last := byte('\n')
	for {
		// ReadFull can return a short block together with an error, so count
		// what arrived before looking at err.
		n, err := io.ReadFull(file, buf)
		if n > 0 {
			lines += uint64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == nil {
			continue
		}
		// The block edge may split a line; only the final byte read decides.
		if last != '\n' {
			lines++
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return lines, nil
		}
		return lines, fmt.Errorf("read %s: %w", path, err)
	}
}
