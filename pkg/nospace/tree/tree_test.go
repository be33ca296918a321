package tree_test

import (
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jamesainslie/nospace/pkg/nospace/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(seq iter.Seq[tree.Entry]) []string {
	var out []string
	for e := range seq {
		out = append(out, e.Path)
	}
	return out
}

func TestDirectories(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	want := []string{"/", "/a", "/a/e", "/d"}
	if diff := cmp.Diff(want, paths(tr.Directories())); diff != "" {
		t.Errorf("Directories() mismatch (-want +got):\n%s", diff)
	}

	t.Run("sequence is restartable", func(t *testing.T) {
		assert.Equal(t, paths(tr.Directories()), paths(tr.Directories()))
	})

	t.Run("early break stops the walk", func(t *testing.T) {
		var seen []string
		for e := range tr.Directories() {
			seen = append(seen, e.Path)
			if len(seen) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"/", "/a"}, seen)
	})
}

func TestFiles(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	var total uint64
	for e := range tr.Files() {
		assert.False(t, e.Node.IsDir())
		total += e.Size()
	}
	assert.Equal(t, tr.TotalSize(), total)
}

func TestAtMost(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	t.Run("example threshold", func(t *testing.T) {
		assert.Equal(t, []string{"/a", "/a/e"}, paths(tr.AtMost(100000)))
		assert.Equal(t, uint64(95437), tr.SumAtMost(100000))
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		assert.Equal(t, []string{"/a/e"}, paths(tr.AtMost(584)))
		assert.Empty(t, paths(tr.AtMost(583)))
	})

	t.Run("sum is monotonic in the limit", func(t *testing.T) {
		limits := []uint64{0, 584, 94853, 100000, 24933642, 48381165, 1 << 40}
		var prev uint64
		for _, limit := range limits {
			sum := tr.SumAtMost(limit)
			assert.GreaterOrEqual(t, sum, prev, "limit %d", limit)
			prev = sum
		}
	})
}

func TestSmallestAtLeast(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	t.Run("example deletion candidate", func(t *testing.T) {
		unused := uint64(70000000) - tr.TotalSize()
		need := uint64(30000000) - unused

		e, ok := tr.SmallestAtLeast(need)
		require.True(t, ok)
		assert.Equal(t, "/d", e.Path)
		assert.Equal(t, uint64(24933642), e.Size())
	})

	t.Run("no qualifying directory", func(t *testing.T) {
		_, ok := tr.SmallestAtLeast(tr.TotalSize() + 1)
		assert.False(t, ok)
	})

	t.Run("zero bound picks the smallest directory", func(t *testing.T) {
		e, ok := tr.SmallestAtLeast(0)
		require.True(t, ok)
		assert.Equal(t, "/a/e", e.Path)
	})

	t.Run("result is monotonic in the bound", func(t *testing.T) {
		bounds := []uint64{0, 585, 94854, 24933643}
		var prev uint64
		for _, bound := range bounds {
			e, ok := tr.SmallestAtLeast(bound)
			require.True(t, ok)
			assert.GreaterOrEqual(t, e.Size(), bound)
			assert.GreaterOrEqual(t, e.Size(), prev)
			prev = e.Size()
		}
	})
}

func TestAggregateIsRepeatable(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	before := tr.TotalSize()
	tr.Aggregate()
	tr.Aggregate()
	assert.Equal(t, before, tr.TotalSize())
}

func TestDirectorySizeIsSumOfChildren(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	for e := range tr.Directories() {
		var sum uint64
		for _, child := range e.Node.Children() {
			sum += child.Size()
		}
		assert.Equal(t, sum, e.Size(), e.Path)
	}
}

func TestChildrenOrder(t *testing.T) {
	tr := mustBuild(t,
		"$ cd /",
		"$ ls",
		"5 small",
		"dir tie",
		"dir big",
		"10 tie.txt",
		"$ cd tie",
		"$ ls",
		"10 inner",
		"$ cd ..",
		"$ cd big",
		"$ ls",
		"100 blob",
	)

	var names []string
	for _, child := range tr.Root().Children() {
		names = append(names, child.Name())
	}
	assert.Equal(t, []string{"big", "tie", "tie.txt", "small"}, names)
}

func TestLookup(t *testing.T) {
	tr, err := buildString(t, example)
	require.NoError(t, err)

	tests := []struct {
		path   string
		wantOK bool
		name   string
	}{
		{path: "/", wantOK: true, name: "/"},
		{path: "/a/e", wantOK: true, name: "e"},
		{path: "a/e/", wantOK: true, name: "e"},
		{path: "/a/e/i", wantOK: true, name: "i"},
		{path: "/a/missing", wantOK: false},
		{path: "/b.txt/x", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			node, ok := tr.Lookup(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.name, node.Name())
			}
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dir", tree.KindDir.String())
	assert.Equal(t, "file", tree.KindFile.String())
	assert.Equal(t, tree.KindDir, tree.NewDir("x").Kind())
	assert.Equal(t, tree.KindFile, tree.NewFile("f", 1).Kind())
}
