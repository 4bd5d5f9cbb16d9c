package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/spf13/afero"
)

// FileFilter narrows the set of files picked up from a directory.
type FileFilter struct {
	Include   []string // glob patterns on the base name; empty keeps everything
	Exclude   []string
	GitIgnore bool // honour <dir>/.gitignore
}

// resolveDirectory checks that dir names an existing directory.
func resolveDirectory(fsys afero.Fs, dir string) error {
	if dir == "" {
		return ErrNoDirectory
	}
	info, err := fsys.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrPathNotExist
		}
		return fmt.Errorf("error accessing path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// listRegularFiles returns the regular files directly inside dir, in
// directory listing order. Subdirectories are not descended into; symlinks
// and special files are skipped.
func listRegularFiles(fsys afero.Fs, dir string, filter FileFilter) ([]FileInfo, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var ignoreMatcher gitignore.IgnoreMatcher
	if filter.GitIgnore {
		ignoreMatcher = loadGitIgnore(fsys, dir)
	}

	var files []FileInfo
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		keep, err := filter.keep(entry.Name())
		if err != nil {
			return nil, err
		}
		if !keep {
			logger().Debug().Str("path", path).Msg("skipping file due to filters")
			continue
		}
		if ignoreMatcher != nil && ignoreMatcher.Match(path, false) {
			logger().Debug().Str("path", path).Msg("skipping file matched by .gitignore")
			continue
		}

		files = append(files, FileInfo{
			Path: path,
			Size: entry.Size(),
			Mode: entry.Mode(),
		})
	}
	return files, nil
}

// loadGitIgnore parses <dir>/.gitignore if present.
func loadGitIgnore(fsys afero.Fs, dir string) gitignore.IgnoreMatcher {
	gitIgnorePath := filepath.Join(dir, ".gitignore")
	file, err := fsys.Open(gitIgnorePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger().Warn().Err(err).Str("path", gitIgnorePath).Msg("could not open .gitignore")
		}
		return nil
	}
	defer file.Close()
	return gitignore.NewGitIgnoreFromReader(dir, file)
}

// keep applies the include/exclude patterns to a file name.
func (f FileFilter) keep(name string) (bool, error) {
	excluded, err := matchesAnyPattern(name, f.Exclude)
	if err != nil {
		return false, err
	}
	if excluded {
		return false, nil
	}
	if len(f.Include) == 0 {
		return true, nil
	}
	return matchesAnyPattern(name, f.Include)
}

// parsePatterns splits a comma-separated string of patterns into a slice.
func parsePatterns(patterns string) []string {
	if patterns == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesAnyPattern checks if the given name matches any of the provided glob patterns.
func matchesAnyPattern(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func filePaths(files []FileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
