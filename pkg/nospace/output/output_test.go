package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var exampleLines = []string{
	"$ cd /", "$ ls", "dir a", "14848514 b.txt", "8504156 c.dat", "dir d",
	"$ cd a", "$ ls", "dir e", "29116 f", "2557 g", "62596 h.lst",
	"$ cd e", "$ ls", "584 i",
	"$ cd ..", "$ cd ..", "$ cd d", "$ ls",
	"4060174 j", "8033020 d.log", "5626152 d.ext", "7214296 k",
}

func exampleResult(t *testing.T) *analyze.Result {
	t.Helper()
	r, err := analyze.Run(context.Background(), "example.txt", transcript.Lines(exampleLines...), analyze.DefaultOptions())
	require.NoError(t, err)
	return r
}

func format(t *testing.T, name string, r *analyze.Result) string {
	t.Helper()
	out, err := Render(name, r)
	require.NoError(t, err)
	return string(out)
}

func TestRegistry(t *testing.T) {
	t.Run("default formatters are registered", func(t *testing.T) {
		assert.Equal(t, []string{"json", "plain", "pretty", "template", "tree", "yaml"}, Available())
	})

	t.Run("unknown formatter", func(t *testing.T) {
		_, err := Get("xml")
		assert.ErrorContains(t, err, "unknown formatter: xml")
	})

	t.Run("custom registry replaces by name", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("x", func() Formatter { return &PlainFormatter{} })
		reg.Register("x", func() Formatter { return &JSONFormatter{} })

		f, err := reg.Get("x")
		require.NoError(t, err)
		assert.IsType(t, &JSONFormatter{}, f)
		assert.Equal(t, []string{"x"}, reg.Available())
	})
}

func TestPlainFormatter(t *testing.T) {
	out := format(t, "plain", exampleResult(t))

	assert.Contains(t, out, "total          48381165\n")
	assert.Contains(t, out, "small_sum      95437\n")
	assert.Contains(t, out, "candidate      /d\n")
	assert.Contains(t, out, "candidate_size 24933642\n")
	assert.Contains(t, out, "94853 /a\n")
	assert.Contains(t, out, "584   /a/e\n")
}

func TestPlainFormatterWithoutCandidate(t *testing.T) {
	r := exampleResult(t)
	r.Candidate = nil
	r.SmallDirs = nil

	out := format(t, "plain", r)
	assert.Contains(t, out, "candidate    -\n")
	assert.NotContains(t, out, "SMALL DIRECTORY")
}

func TestJSONFormatter(t *testing.T) {
	out := format(t, "json", exampleResult(t))

	var got jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, uint64(95437), got.Small.Sum)
	assert.Len(t, got.Small.Dirs, 2)
	assert.Equal(t, "/a", got.Small.Dirs[0].Path)
	require.NotNil(t, got.Deletion.Candidate)
	assert.Equal(t, uint64(24933642), got.Deletion.Candidate.Size)
	assert.Equal(t, "24 MiB", got.Deletion.Candidate.SizeHuman)
	assert.Equal(t, uint64(48381165), got.Meta.TotalSize)
	assert.Equal(t, "example.txt", got.Meta.Source)
}

func TestJSONFormatterNullCandidate(t *testing.T) {
	r := exampleResult(t)
	r.Candidate = nil

	out := format(t, "json", r)
	assert.Contains(t, out, `"candidate": null`)
}

func TestYAMLFormatter(t *testing.T) {
	out := format(t, "yaml", exampleResult(t))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))

	assert.Equal(t, 95437, got["small_sum"])
	assert.Equal(t, 48381165, got["total_size"])
	assert.NotContains(t, got, "tree")

	candidate, ok := got["candidate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/d", candidate["path"])
}

func TestPrettyFormatter(t *testing.T) {
	r := exampleResult(t)
	out := format(t, "pretty", r)

	assert.Contains(t, out, "example.txt")
	assert.Contains(t, out, "48,381,165")
	assert.Contains(t, out, "Directories at most 100,000")
	assert.Contains(t, out, "/a/e")
	assert.Contains(t, out, "95,437")
	assert.Contains(t, out, "Delete:")
	assert.Contains(t, out, "24,933,642")

	t.Run("no space needed", func(t *testing.T) {
		r.NeedToFree = 0
		r.Candidate = nil
		r.SmallDirs = nil
		out := format(t, "pretty", r)
		assert.Contains(t, out, "enough free space")
		assert.Contains(t, out, "none")
	})

	t.Run("no candidate large enough", func(t *testing.T) {
		r.NeedToFree = 1
		r.Candidate = nil
		out := format(t, "pretty", r)
		assert.Contains(t, out, "no directory frees enough space")
	})
}

func TestTreeFormatter(t *testing.T) {
	r := exampleResult(t)

	t.Run("draws the whole tree", func(t *testing.T) {
		want := `/ 48,381,165
├── d 24,933,642 [delete]
│   ├── d.log 8,033,020
│   ├── k 7,214,296
│   ├── d.ext 5,626,152
│   └── j 4,060,174
├── b.txt 14,848,514
├── c.dat 8,504,156
└── a 94,853 [small]
    ├── h.lst 62,596
    ├── f 29,116
    ├── g 2,557
    └── e 584 [small]
        └── i 584
`
		assert.Equal(t, want, format(t, "tree", r))
	})

	t.Run("max depth", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&TreeFormatter{MaxDepth: 1}).Format(&buf, r))
		assert.Equal(t, 5, strings.Count(buf.String(), "\n"))
	})

	t.Run("needs a tree", func(t *testing.T) {
		var buf bytes.Buffer
		err := (&TreeFormatter{}).Format(&buf, &analyze.Result{})
		assert.ErrorIs(t, err, ErrNoTree)
	})
}

func TestTemplateFormatter(t *testing.T) {
	r := exampleResult(t)

	t.Run("default template prints both answers", func(t *testing.T) {
		assert.Equal(t, "95437\n24933642\n", format(t, "template", r))
	})

	t.Run("custom template with helpers", func(t *testing.T) {
		f := NewTemplateFormatter("{{comma .TotalSize}} {{bytes .Unused}}")
		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, r))
		assert.Equal(t, "48,381,165 21 MiB", buf.String())

		f.SetTemplate("{{len .SmallDirs}}")
		buf.Reset()
		require.NoError(t, f.Format(&buf, r))
		assert.Equal(t, "2", buf.String())
	})

	t.Run("invalid template", func(t *testing.T) {
		f := NewTemplateFormatter("{{.Nope")
		var buf bytes.Buffer
		assert.Error(t, f.Format(&buf, r))
	})
}
