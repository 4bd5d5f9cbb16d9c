package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version string = "dev"

// options is the resolved configuration of one invocation:
// defaults < NCOUNT_* environment < flags.
type options struct {
	Getline   bool
	Ncount    bool
	Buffered  bool
	Benchmark bool

	Threads int
	Strict  bool
	Runs    int
	PerFile bool

	Format    string
	File      string
	Clipboard bool
	PDF       string

	Include   string
	Exclude   string
	GitIgnore bool

	Interactive bool
	Verbose     bool
}

func loadOptions(v *viper.Viper) options {
	return options{
		Getline:     v.GetBool("getline"),
		Ncount:      v.GetBool("ncount"),
		Buffered:    v.GetBool("buffered"),
		Benchmark:   v.GetBool("benchmark"),
		Threads:     v.GetInt("threads"),
		Strict:      v.GetBool("strict"),
		Runs:        v.GetInt("runs"),
		PerFile:     v.GetBool("per-file"),
		Format:      v.GetString("format"),
		File:        v.GetString("file"),
		Clipboard:   v.GetBool("clipboard"),
		PDF:         v.GetString("pdf"),
		Include:     v.GetString("include"),
		Exclude:     v.GetString("exclude"),
		GitIgnore:   v.GetBool("gitignore"),
		Interactive: v.GetBool("interactive"),
		Verbose:     v.GetBool("verbose"),
	}
}

// mode resolves the mode flags. When several are given, benchmark wins, then
// ncount, getline and buffered.
func (o options) mode() (Mode, Strategy) {
	switch {
	case o.Benchmark:
		return ModeBenchmark, StrategyGetline
	case o.Ncount:
		return ModeStrategy, StrategyNcount
	case o.Getline:
		return ModeStrategy, StrategyGetline
	case o.Buffered:
		return ModeStrategy, StrategyBuffered
	default:
		return ModeDefault, StrategyGetline
	}
}

func (o options) execOptions() ExecOptions {
	policy := FailSoft
	if o.Strict {
		policy = FailFast
	}
	return ExecOptions{Workers: o.Threads, Policy: policy}
}

func (o options) filter() FileFilter {
	return FileFilter{
		Include:   parsePatterns(o.Include),
		Exclude:   parsePatterns(o.Exclude),
		GitIgnore: o.GitIgnore,
	}
}

// newRootCmd builds the command. fsys is where directories are read from;
// out receives the report and errOut the logs.
func newRootCmd(fsys afero.Fs, out, errOut io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ncount [options] directory",
		Short: "Count lines in every file of a directory.",
		Long: `ncount counts '\n'-delimited lines across all regular files directly
inside a directory, in parallel, using one of three counting methods.
With -b it runs all three and reports how long each took.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fsys, loadOptions(v), args, out, errOut)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.BoolP("getline", "g", false, "use getline method. Used by default.")
	flags.BoolP("ncount", "n", false, `use \n counting`)
	flags.BoolP("buffered", "m", false, `use buffered \n counting`)
	flags.BoolP("benchmark", "b", false, "benchmark all three methods")

	flags.IntP("threads", "t", 0, "Concurrent files: 0 one goroutine per file, N a pool of N, -1 one per CPU")
	flags.Bool("strict", false, "Fail on the first unreadable file instead of counting it as 0")
	flags.Int("runs", 1, "Timed runs per method in benchmark mode")
	flags.Bool("per-file", false, "Also list the line count of every file")

	flags.StringP("format", "o", "text", "Output format: text, json or yaml")
	flags.StringP("file", "f", "", "Save output to specified file")
	flags.BoolP("clipboard", "c", false, "Copy output to clipboard")
	flags.String("pdf", "", "Save output as PDF")

	flags.StringP("include", "i", "", "Only count files matching these patterns (comma-separated, e.g. *.go,*.md)")
	flags.StringP("exclude", "e", "", "Skip files matching these patterns (comma-separated)")
	flags.Bool("gitignore", false, "Skip files matched by the directory's .gitignore")

	flags.Bool("interactive", false, "Pick the directory with a fuzzy finder")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	v.SetEnvPrefix("NCOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	cobra.CheckErr(v.BindPFlags(flags))

	return cmd
}

// run is the body of the root command.
func run(cmd *cobra.Command, fsys afero.Fs, opts options, args []string, out, errOut io.Writer) error {
	initLogger(errOut, opts.Verbose)

	var directory string
	if len(args) > 0 {
		// As with most of these tools the last positional argument wins.
		directory = args[len(args)-1]
	}

	if opts.Interactive {
		picked, err := runInteractiveFinder(fsys)
		if errors.Is(err, errSelectionAborted) {
			logger().Info().Msg("interactive selection aborted")
			return nil
		}
		if err != nil {
			return err
		}
		directory = picked
	}

	if isGitURL(directory) {
		tempDir, err := cloneGitRepo(directory, errOut)
		if err != nil {
			return err
		}
		defer func() {
			logger().Debug().Str("dir", tempDir).Msg("cleaning up temporary directory")
			_ = os.RemoveAll(tempDir)
		}()
		directory = tempDir
	}

	// Called with nothing at all: show how to use it, then still exit 1.
	if directory == "" && cmd.Flags().NFlag() == 0 {
		_ = cmd.Usage()
	}

	if err := resolveDirectory(fsys, directory); err != nil {
		return err
	}

	files, err := listRegularFiles(fsys, directory, opts.filter())
	if err != nil {
		return err
	}
	logger().Debug().Str("dir", directory).Int("files", len(files)).Msg("found files to count")

	ctx := cmd.Context()
	paths := filePaths(files)
	mode, strategy := opts.mode()
	report := Report{Mode: mode, Directory: directory, Strategy: strategy}

	if mode == ModeBenchmark {
		report.Entries, err = benchmark(ctx, fsys, paths, BenchmarkOptions{Exec: opts.execOptions(), Runs: opts.Runs})
		if err != nil {
			return err
		}
		if opts.PerFile {
			// Per-file numbers come from one extra, untimed buffered pass.
			_, report.Files, err = countAll(ctx, fsys, paths, StrategyBuffered, opts.execOptions())
		}
	} else {
		var results []FileCount
		report.Total, results, err = countAll(ctx, fsys, paths, strategy, opts.execOptions())
		if opts.PerFile {
			report.Files = results
		}
	}
	if err != nil {
		return err
	}

	if opts.PDF != "" {
		return generatePDF(report, opts.PDF)
	}

	rendered, err := renderReport(report, opts.Format)
	if err != nil {
		return err
	}
	return writeReport(out, rendered, opts.File, opts.Clipboard)
}

func main() {
	cmd := newRootCmd(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
