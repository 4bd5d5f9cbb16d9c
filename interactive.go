package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/afero"
)

// errSelectionAborted is returned when the user leaves the picker without
// choosing anything.
var errSelectionAborted = errors.New("interactive selection aborted")

// directoryCandidates lists root and every non-hidden directory below it.
func directoryCandidates(fsys afero.Fs, root string) ([]string, error) {
	candidates := []string{root}
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == root || !info.IsDir() {
			return nil
		}
		if isHidden(info.Name()) {
			return filepath.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}

// runInteractiveFinder lets the user pick the directory to count.
func runInteractiveFinder(fsys afero.Fs) (string, error) {
	candidates, err := directoryCandidates(fsys, ".")
	if err != nil {
		return "", err
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string { return candidates[i] },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the directory whose files should be counted."
			}
			files, err := listRegularFiles(fsys, candidates[i], FileFilter{})
			if err != nil {
				return fmt.Sprintf("Path: %s\nError: %v", candidates[i], err)
			}
			return fmt.Sprintf("Path: %s\nRegular files: %d", candidates[i], len(files))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errSelectionAborted
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return candidates[idx], nil
}

// isHidden checks if a base name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}
