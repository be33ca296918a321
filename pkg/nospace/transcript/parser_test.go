package transcript_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want transcript.Command
	}{
		{name: "cd root", line: "$ cd /", want: transcript.ChangeDirectory{Target: "/"}},
		{name: "cd parent", line: "$ cd ..", want: transcript.ChangeDirectory{Target: ".."}},
		{name: "cd child", line: "$ cd a", want: transcript.ChangeDirectory{Target: "a"}},
		{name: "ls", line: "$ ls", want: transcript.ListContents{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := transcript.NewParser()
			_, err := p.Parse(1, "$ cd /")
			require.NoError(t, err)

			item, err := p.Parse(2, tt.line)
			require.NoError(t, err)
			assert.True(t, item.IsCommand())
			assert.Equal(t, tt.want, item.Command)
			assert.Nil(t, item.Entry)
			assert.Equal(t, 2, item.Line)
			assert.Equal(t, tt.line, item.Command.String())
		})
	}
}

func TestParserListingEntries(t *testing.T) {
	p := transcript.NewParser()
	for i, line := range []string{"$ cd /", "$ ls"} {
		_, err := p.Parse(i+1, line)
		require.NoError(t, err)
	}
	assert.Equal(t, transcript.InListing, p.State())

	t.Run("directory entry", func(t *testing.T) {
		item, err := p.Parse(3, "dir a")
		require.NoError(t, err)
		assert.Equal(t, transcript.DirectoryEntry{Name: "a"}, item.Entry)
		assert.Equal(t, "a", item.Entry.EntryName())
	})

	t.Run("file entry", func(t *testing.T) {
		item, err := p.Parse(4, "14848514 b.txt")
		require.NoError(t, err)
		assert.Equal(t, transcript.FileEntry{Name: "b.txt", Size: 14848514}, item.Entry)
		assert.Equal(t, "14848514 b.txt", item.Entry.String())
	})

	t.Run("zero sized file", func(t *testing.T) {
		item, err := p.Parse(5, "0 empty")
		require.NoError(t, err)
		assert.Equal(t, transcript.FileEntry{Name: "empty", Size: 0}, item.Entry)
	})

	t.Run("command ends listing", func(t *testing.T) {
		_, err := p.Parse(6, "$ cd a")
		require.NoError(t, err)
		assert.Equal(t, transcript.AwaitingCommand, p.State())
	})
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		wantErr error
	}{
		{name: "unknown opcode", lines: []string{"$ cd /", "$ rm x"}, wantErr: transcript.ErrMalformedCommand},
		{name: "cd without target", lines: []string{"$ cd /", "$ cd"}, wantErr: transcript.ErrMalformedCommand},
		{name: "cd with empty target", lines: []string{"$ cd /", "$ cd "}, wantErr: transcript.ErrMalformedCommand},
		{name: "ls with argument", lines: []string{"$ cd /", "$ ls -la"}, wantErr: transcript.ErrMalformedCommand},
		{name: "missing separator", lines: []string{"$ cd /", "$ls"}, wantErr: transcript.ErrMalformedCommand},
		{name: "bad size", lines: []string{"$ cd /", "$ ls", "12x b.txt"}, wantErr: transcript.ErrMalformedCommand},
		{name: "negative size", lines: []string{"$ cd /", "$ ls", "-12 b.txt"}, wantErr: transcript.ErrMalformedCommand},
		{name: "listing without name", lines: []string{"$ cd /", "$ ls", "dir"}, wantErr: transcript.ErrMalformedCommand},
		{name: "reserved name", lines: []string{"$ cd /", "$ ls", "dir .."}, wantErr: transcript.ErrMalformedCommand},
		{name: "cd into path", lines: []string{"$ cd /", "$ cd a/b"}, wantErr: transcript.ErrMalformedCommand},
		{name: "cd dot", lines: []string{"$ cd /", "$ cd ."}, wantErr: transcript.ErrMalformedCommand},
		{name: "listing outside ls", lines: []string{"$ cd /", "dir a"}, wantErr: transcript.ErrMalformedCommand},
		{name: "listing after cd", lines: []string{"$ cd /", "$ ls", "$ cd a", "10 f"}, wantErr: transcript.ErrMalformedCommand},
		{name: "first command is ls", lines: []string{"$ ls"}, wantErr: transcript.ErrInvalidTranscriptStart},
		{name: "first command enters child", lines: []string{"$ cd a"}, wantErr: transcript.ErrInvalidTranscriptStart},
		{name: "first line is a listing", lines: []string{"dir a"}, wantErr: transcript.ErrInvalidTranscriptStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := transcript.NewParser()
			var err error
			for i, line := range tt.lines {
				if _, err = p.Parse(i+1, line); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var lineErr *transcript.LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, len(tt.lines), lineErr.Line)
			assert.Equal(t, tt.lines[len(tt.lines)-1], lineErr.Text)
		})
	}
}

func TestItems(t *testing.T) {
	t.Run("yields one item per non-blank line", func(t *testing.T) {
		src := transcript.NewLineReader(strings.NewReader("$ cd /\n$ ls\r\n\ndir a\n10 f\n"))

		var items []transcript.Item
		for item, err := range transcript.Items(src) {
			require.NoError(t, err)
			items = append(items, item)
		}

		require.Len(t, items, 4)
		assert.Equal(t, []int{1, 2, 4, 5}, []int{items[0].Line, items[1].Line, items[2].Line, items[3].Line})
		assert.Equal(t, transcript.ListContents{}, items[1].Command)
		assert.Equal(t, transcript.FileEntry{Name: "f", Size: 10}, items[3].Entry)
	})

	t.Run("stops at first error", func(t *testing.T) {
		src := transcript.Lines("$ cd /", "$ pwd", "$ ls")

		var count int
		var lastErr error
		for _, err := range transcript.Items(src) {
			count++
			lastErr = err
		}

		assert.Equal(t, 2, count)
		assert.ErrorIs(t, lastErr, transcript.ErrMalformedCommand)
	})

	t.Run("listing context may run to end of input", func(t *testing.T) {
		var count int
		for _, err := range transcript.Items(transcript.Lines("$ cd /", "$ ls", "1 a")) {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, 3, count)
	})

	t.Run("surfaces read errors", func(t *testing.T) {
		boom := errors.New("disk on fire")
		var got error
		for _, err := range transcript.Items(failingSource{err: boom}) {
			got = err
		}
		assert.ErrorIs(t, got, boom)
	})
}

func TestLineReaderEOF(t *testing.T) {
	r := transcript.NewLineReader(strings.NewReader("one\ntwo"))

	line, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

type failingSource struct{ err error }

func (f failingSource) Next() (string, error) { return "", f.err }
