package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against fsys and returns stdout and the error.
func execute(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newRootCmd(fsys, out, errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_DefaultPrintsBareTotal(t *testing.T) {
	fsys, _ := sampleDir(t)

	out, err := execute(t, fsys, "/data")
	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
}

func TestCLI_StrategyFlags(t *testing.T) {
	fsys, _ := sampleDir(t)

	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"-g", "/data"}, want: "Lines count using getline method: 15\n"},
		{args: []string{"-n", "/data"}, want: "Lines count using ncount method: 15\n"},
		{args: []string{"-m", "/data"}, want: "Lines count using buffered ncount method: 15\n"},
		{args: []string{"-m", "-g", "/data"}, want: "Lines count using getline method: 15\n"},
		{args: []string{"-g", "-n", "/data"}, want: "Lines count using ncount method: 15\n"},
		{args: []string{"--threads", "2", "-m", "/data"}, want: "Lines count using buffered ncount method: 15\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, fsys, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCLI_Benchmark(t *testing.T) {
	fsys, _ := sampleDir(t)

	out, err := execute(t, fsys, "-b", "-n", "/data")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Benchmarking...", lines[0])

	labels := []string{"getline method", "ncounting method", "buffered ncounting method"}
	for i, label := range labels {
		timing := regexp.MustCompile("^" + regexp.QuoteMeta(label) + ` total running time: [0-9.e+-]+ millisecond$`)
		assert.Regexp(t, timing, lines[1+2*i])
		assert.Equal(t, "Total lines: 15", lines[2+2*i])
	}
}

func TestCLI_EmptyDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/empty", 0755))

	out, err := execute(t, fsys, "/empty")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	out, err = execute(t, fsys, "-b", "/empty")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Total lines: 0\n"))
}

func TestCLI_PathErrors(t *testing.T) {
	fsys, _ := sampleDir(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		message string
		usage   bool
	}{
		{name: "missing path", args: []string{"/does/not/exist"}, wantErr: ErrPathNotExist, message: "Path does not exist"},
		{name: "file instead of directory", args: []string{"/data/ten.txt"}, wantErr: ErrNotDirectory, message: "Not a directory"},
		{name: "no directory", args: []string{"-b"}, wantErr: ErrNoDirectory, message: "No directory provided"},
		{name: "no arguments", args: []string{}, wantErr: ErrNoDirectory, message: "No directory provided", usage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, fsys, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.message, err.Error())
			if tt.usage {
				assert.Contains(t, out, "Usage:")
				assert.Contains(t, out, "ncount [options] directory")
				return
			}
			assert.Empty(t, out)
		})
	}
}

func TestCLI_LastDirectoryWins(t *testing.T) {
	fsys, _ := sampleDir(t)
	writeFiles(t, fsys, "/other", map[string]string{"one.txt": "1\n"})

	out, err := execute(t, fsys, "/data", "/other")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCLI_PanicFailsRun(t *testing.T) {
	base, _ := sampleDir(t)
	fsys := panicFs{Fs: base, path: "/data/zero.txt"}

	_, err := execute(t, fsys, "-m", "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskPanic)
}

func TestCLI_StrictFromEnvironment(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "ok.txt"), []byte("a\nb\n"), 0644))
	locked := filepath.Join(tempDir, "locked.txt")
	require.NoError(t, os.WriteFile(locked, []byte("secret\n"), 0000))
	if f, err := os.Open(locked); err == nil {
		f.Close()
		t.Skip("file permissions are not enforced for this user")
	}

	out, err := execute(t, afero.NewOsFs(), tempDir)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	t.Setenv("NCOUNT_STRICT", "true")
	_, err = execute(t, afero.NewOsFs(), tempDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestCLI_StrictOnReadError(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFiles(t, base, "/d", map[string]string{"a": strings.Repeat("x\n", 8), "b": strings.Repeat("x\n", 8)})
	fsys := failingFs{Fs: base, limit: 10}

	out, err := execute(t, fsys, "-m", "/d")
	require.NoError(t, err)
	assert.Equal(t, "Lines count using buffered ncount method: 10\n", out)

	out, err = execute(t, fsys, "-m", "--strict", "/d")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskGone)
	assert.Empty(t, out)
}

func TestCLI_JSONPerFile(t *testing.T) {
	fsys, _ := sampleDir(t)

	out, err := execute(t, fsys, "-n", "--per-file", "--format", "json", "/data")
	require.NoError(t, err)

	var doc reportDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "count", doc.Mode)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, uint64(15), doc.Results[0].Total)
	assert.Equal(t, []reportFile{
		{Path: "/data/five.txt", Lines: 5},
		{Path: "/data/ten.txt", Lines: 10},
		{Path: "/data/zero.txt", Lines: 0},
	}, doc.Files)
}

func TestCLI_IncludeFilter(t *testing.T) {
	fsys, _ := sampleDir(t)

	out, err := execute(t, fsys, "--include", "t*.txt", "/data")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestCLI_OutputFile(t *testing.T) {
	fsys, _ := sampleDir(t)
	path := filepath.Join(t.TempDir(), "out.yaml")

	out, err := execute(t, fsys, "-o", "yaml", "-f", path, "/data")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total: 15")
}

func TestIsGitURL(t *testing.T) {
	assert.True(t, isGitURL("https://github.com/user/repo.git"))
	assert.True(t, isGitURL("git@github.com:user/repo"))
	assert.False(t, isGitURL("/home/user/repo"))
	assert.False(t, isGitURL(""))
}

func TestDirectoryCandidates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/proj/a/b", 0755))
	require.NoError(t, fsys.MkdirAll("/proj/.git/objects", 0755))
	writeFiles(t, fsys, "/proj", map[string]string{"file.txt": ""})

	got, err := directoryCandidates(fsys, "/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj", "/proj/a", "/proj/a/b"}, got)
}
