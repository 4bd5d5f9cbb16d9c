package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"
)

// Mode is what the command was asked to do.
type Mode int

const (
	ModeDefault Mode = iota // getline, bare integer output
	ModeStrategy
	ModeBenchmark
)

// Report holds everything needed to render the result of one invocation.
type Report struct {
	Mode      Mode
	Directory string
	Strategy  Strategy // ModeDefault and ModeStrategy
	Total     uint64   // ModeDefault and ModeStrategy
	Entries   []BenchmarkEntry
	Files     []FileCount // only when per-file output was requested
}

type reportDoc struct {
	Directory string         `json:"directory" yaml:"directory"`
	Mode      string         `json:"mode" yaml:"mode"`
	Results   []reportResult `json:"results" yaml:"results"`
	Files     []reportFile   `json:"files,omitempty" yaml:"files,omitempty"`
	Agree     *bool          `json:"totals_agree,omitempty" yaml:"totals_agree,omitempty"`
}

type reportResult struct {
	Strategy  string   `json:"strategy" yaml:"strategy"`
	Total     uint64   `json:"total" yaml:"total"`
	ElapsedMS *float64 `json:"elapsed_ms,omitempty" yaml:"elapsed_ms,omitempty"`
	Runs      int      `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// reportFile is a FileCount with its error flattened to text. Lines is what
// was read before the error.
type reportFile struct {
	Path  string `json:"path" yaml:"path"`
	Lines uint64 `json:"lines" yaml:"lines"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r Report) doc() reportDoc {
	d := reportDoc{Directory: r.Directory}
	for _, f := range r.Files {
		rf := reportFile{Path: f.Path, Lines: f.Lines}
		if f.Err != nil {
			rf.Error = f.Err.Error()
		}
		d.Files = append(d.Files, rf)
	}
	switch r.Mode {
	case ModeBenchmark:
		d.Mode = "benchmark"
		agree := entriesAgree(r.Entries)
		d.Agree = &agree
		for _, e := range r.Entries {
			ms := e.ElapsedMillis()
			d.Results = append(d.Results, reportResult{
				Strategy:  e.Strategy.String(),
				Total:     e.Total,
				ElapsedMS: &ms,
				Runs:      e.Runs,
			})
		}
	default:
		d.Mode = "count"
		d.Results = []reportResult{{Strategy: r.Strategy.String(), Total: r.Total}}
	}
	return d
}

// renderReport renders the report in the given format: text, json or yaml.
func renderReport(r Report, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return renderText(r), nil
	case "json":
		out, err := json.MarshalIndent(r.doc(), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report as json: %w", err)
		}
		return string(out) + "\n", nil
	case "yaml", "yml":
		out, err := yaml.Marshal(r.doc())
		if err != nil {
			return "", fmt.Errorf("failed to encode report as yaml: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s. Use 'text', 'json' or 'yaml'", format)
	}
}

func renderText(r Report) string {
	var builder strings.Builder
	switch r.Mode {
	case ModeBenchmark:
		builder.WriteString("Benchmarking...\n")
		for _, e := range r.Entries {
			builder.WriteString(fmt.Sprintf("%s total running time: %s millisecond\n", e.Label, formatMillis(e.ElapsedMillis())))
			builder.WriteString(fmt.Sprintf("Total lines: %d\n", e.Total))
		}
	case ModeStrategy:
		builder.WriteString(fmt.Sprintf("Lines count using %s: %d\n", r.Strategy.countLabel(), r.Total))
	default:
		builder.WriteString(fmt.Sprintf("%d\n", r.Total))
	}

	if len(r.Files) > 0 {
		builder.WriteString("\n--- Files ---\n")
		for _, f := range r.Files {
			if f.Err != nil {
				builder.WriteString(fmt.Sprintf("%s: error (%v)\n", f.Path, f.Err))
				continue
			}
			builder.WriteString(fmt.Sprintf("%s: %d\n", f.Path, f.Lines))
		}
	}
	return builder.String()
}

// formatMillis prints at most six significant digits.
func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'g', 6, 64)
}

// writeReport sends the rendered report to a file, the clipboard, or out.
func writeReport(out io.Writer, rendered, outputFile string, toClipboard bool) error {
	switch {
	case outputFile != "":
		if err := os.WriteFile(outputFile, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", outputFile, err)
		}
		logger().Info().Str("path", outputFile).Msg("output saved")
	case toClipboard:
		if err := clipboard.WriteAll(rendered); err != nil {
			logger().Warn().Err(err).Msg("error writing to clipboard, printing instead")
			_, err = io.WriteString(out, rendered)
			return err
		}
		logger().Info().Msg("output copied to clipboard")
	default:
		_, err := io.WriteString(out, rendered)
		return err
	}
	return nil
}
