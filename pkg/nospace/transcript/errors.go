package transcript

import (
	"errors"
	"fmt"
)

// Errors reported while parsing a transcript or replaying it into a tree.
// All of them abort the whole reconstruction.
var (
	// ErrMalformedCommand indicates a line that is neither a valid command
	// nor a valid listing entry in its context.
	ErrMalformedCommand = errors.New("malformed command")

	// ErrInvalidTranscriptStart indicates that the transcript does not begin
	// with `$ cd /`.
	ErrInvalidTranscriptStart = errors.New("transcript must start with `$ cd /`")

	// ErrCannotAscendPastRoot indicates `$ cd ..` issued at the root.
	ErrCannotAscendPastRoot = errors.New("cannot ascend past root")

	// ErrNotADirectory indicates `$ cd` into a name that is a file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrInconsistentFileSize indicates a file listed again with a
	// different size.
	ErrInconsistentFileSize = errors.New("inconsistent file size")

	// ErrNameConflict indicates a file listed under a name that already
	// belongs to a directory.
	ErrNameConflict = errors.New("name already used by a directory")

	// ErrSizeOverflow indicates file sizes whose sum does not fit in 64
	// bits, so no directory size could be represented.
	ErrSizeOverflow = errors.New("total size overflows 64 bits")
)

// LineError ties a parse or build failure to the transcript line that
// caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

// NewLineError wraps err with the position of the offending line.
func NewLineError(line int, text string, err error) *LineError {
	return &LineError{Line: line, Text: text, Err: err}
}

func (e *LineError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
