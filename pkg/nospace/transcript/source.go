package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single transcript line.
const maxLineSize = 1024 * 1024

// LineSource yields transcript lines in order. Next returns io.EOF once the
// input is exhausted; any other error aborts parsing.
type LineSource interface {
	Next() (string, error)
}

// LineReader is a LineSource backed by an io.Reader.
type LineReader struct {
	sc     *bufio.Scanner
	closer io.Closer
}

// NewLineReader returns a LineSource reading newline-separated lines from r.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineReader{sc: sc}
}

// OpenFile opens the named transcript file for streaming. The caller must
// Close it.
func OpenFile(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %q: %w", path, err)
	}
	r := NewLineReader(f)
	r.closer = f
	return r, nil
}

// Next returns the next line without its terminator.
func (r *LineReader) Next() (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying file, if any.
func (r *LineReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// sliceSource serves lines from memory.
type sliceSource struct {
	lines []string
	next  int
}

// Lines returns a LineSource over the given lines.
func Lines(lines ...string) LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) Next() (string, error) {
	if s.next >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}

// Ensure the sources implement LineSource.
var (
	_ LineSource = (*LineReader)(nil)
	_ LineSource = (*sliceSource)(nil)
)
