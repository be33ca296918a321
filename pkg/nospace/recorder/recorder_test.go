package recorder_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jamesainslie/nospace/pkg/nospace/recorder"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
	"github.com/jamesainslie/nospace/pkg/nospace/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), 1500)
	writeFile(t, filepath.Join(root, "a", "f"), 300)
	writeFile(t, filepath.Join(root, "a", "e", "i"), 20)
	writeFile(t, filepath.Join(root, "d", "j"), 4000)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	return root
}

func TestRecord(t *testing.T) {
	root := createTestTree(t)

	var buf bytes.Buffer
	stats, err := recorder.Record(context.Background(), recorder.Options{Root: root}, &buf)
	require.NoError(t, err)

	want := `$ cd /
$ ls
dir a
1500 b.txt
dir d
dir empty
$ cd a
$ ls
dir e
300 f
$ cd e
$ ls
20 i
$ cd ..
$ cd ..
$ cd d
$ ls
4000 j
$ cd ..
$ cd empty
$ ls
$ cd ..
`
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 5, stats.Dirs)
	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, uint64(5820), stats.TotalSize)
	assert.Equal(t, strings.Count(want, "\n"), stats.Lines)
	assert.Zero(t, stats.Skipped)
}

func TestRecordRoundTrip(t *testing.T) {
	root := createTestTree(t)

	var buf bytes.Buffer
	stats, err := recorder.Record(context.Background(), recorder.Options{Root: root, Workers: 2}, &buf)
	require.NoError(t, err)

	tr, err := tree.Build(transcript.NewLineReader(&buf))
	require.NoError(t, err)

	assert.Equal(t, stats.TotalSize, tr.TotalSize())
	dirs, files := tr.Counts()
	assert.Equal(t, stats.Dirs, dirs)
	assert.Equal(t, stats.Files, files)

	a, ok := tr.Lookup("/a")
	require.True(t, ok)
	assert.Equal(t, uint64(320), a.Size())
}

func TestRecordSkipsUnrepresentable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep"), 10)
	writeFile(t, filepath.Join(root, "has space"), 10)
	writeFile(t, filepath.Join(root, "spaced dir", "inner"), 10)
	writeFile(t, filepath.Join(root, ".hidden"), 10)
	if runtime.GOOS != "windows" {
		require.NoError(t, os.Symlink(filepath.Join(root, "keep"), filepath.Join(root, "link")))
	}

	t.Run("names with spaces and symlinks", func(t *testing.T) {
		var buf bytes.Buffer
		stats, err := recorder.Record(context.Background(), recorder.Options{Root: root}, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "10 keep\n")
		assert.Contains(t, out, "10 .hidden\n")
		assert.NotContains(t, out, "space")
		assert.NotContains(t, out, "link")
		assert.Equal(t, 2, stats.Files)
		assert.GreaterOrEqual(t, stats.Skipped, int64(2))
	})

	t.Run("hidden entries", func(t *testing.T) {
		var buf bytes.Buffer
		stats, err := recorder.Record(context.Background(), recorder.Options{Root: root, SkipHidden: true}, &buf)
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), ".hidden")
		assert.Equal(t, 1, stats.Files)
	})
}

func TestRecordExclude(t *testing.T) {
	root := createTestTree(t)

	var buf bytes.Buffer
	stats, err := recorder.Record(context.Background(), recorder.Options{
		Root:    root,
		Exclude: []string{"*.txt", "a/e", "d"},
	}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "300 f\n")
	assert.NotContains(t, out, "b.txt")
	assert.NotContains(t, out, "dir d\n")
	assert.NotContains(t, out, "dir e\n")
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, int64(3), stats.Skipped)

	_, err = recorder.New(recorder.Options{Root: root, Exclude: []string{"[unclosed"}})
	assert.ErrorContains(t, err, "invalid exclude pattern")
}

func TestRecordErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := recorder.New(recorder.Options{Root: filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f")
		writeFile(t, path, 1)
		_, err := recorder.New(recorder.Options{Root: path})
		assert.ErrorContains(t, err, "not a directory")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r, err := recorder.New(recorder.Options{Root: createTestTree(t)})
		require.NoError(t, err)
		assert.ErrorIs(t, r.Walk(ctx), context.Canceled)
	})
}

func TestRecordEmptyRoot(t *testing.T) {
	var buf bytes.Buffer
	stats, err := recorder.Record(context.Background(), recorder.Options{Root: t.TempDir()}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "$ cd /\n$ ls\n", buf.String())
	assert.Equal(t, 1, stats.Dirs)
}

func TestCapacity(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		_, _, err := recorder.Capacity(t.TempDir())
		assert.ErrorIs(t, err, recorder.ErrCapacityUnsupported)
		return
	}

	total, available, err := recorder.Capacity(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, total)
	assert.LessOrEqual(t, available, total)
}
