package transcript

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Line grammar tokens.
const (
	commandMarker = "$"
	separator     = " "
	opChange      = "cd"
	opList        = "ls"
	dirPrefix     = "dir"
)

// State is the parser's command context.
type State int

const (
	// AwaitingCommand expects a command line.
	AwaitingCommand State = iota
	// InListing accepts listing lines until the next command.
	InListing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case AwaitingCommand:
		return "awaiting-command"
	case InListing:
		return "in-listing"
	default:
		return "unknown"
	}
}

// Parser converts transcript lines into Items. It remembers whether the
// previous command was `ls` so that listing lines can be recognized, and
// whether the transcript has started with `$ cd /`.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	state   State
	started bool
}

// NewParser returns a parser in the AwaitingCommand state.
func NewParser() *Parser {
	return &Parser{state: AwaitingCommand}
}

// State returns the current command context.
func (p *Parser) State() State {
	return p.state
}

// Parse parses one line. line is the 1-based line number used in errors.
// Errors are *LineError values wrapping one of the package sentinels.
func (p *Parser) Parse(line int, text string) (Item, error) {
	item := Item{Line: line, Text: text}

	if rest, ok := strings.CutPrefix(text, commandMarker); ok {
		cmd, err := parseCommand(rest)
		if err != nil {
			return Item{}, NewLineError(line, text, err)
		}
		if !p.started {
			if cd, ok := cmd.(ChangeDirectory); !ok || !cd.IsRoot() {
				return Item{}, NewLineError(line, text, ErrInvalidTranscriptStart)
			}
			p.started = true
		}

		p.state = AwaitingCommand
		if _, ok := cmd.(ListContents); ok {
			p.state = InListing
		}
		item.Command = cmd
		return item, nil
	}

	if !p.started {
		return Item{}, NewLineError(line, text, ErrInvalidTranscriptStart)
	}
	if p.state != InListing {
		return Item{}, NewLineError(line, text,
			fmt.Errorf("%w: listing line outside of `ls` output", ErrMalformedCommand))
	}

	entry, err := parseEntry(text)
	if err != nil {
		return Item{}, NewLineError(line, text, err)
	}
	item.Entry = entry
	return item, nil
}

// parseCommand parses the part of a command line after the marker.
func parseCommand(rest string) (Command, error) {
	rest, ok := strings.CutPrefix(rest, separator)
	if !ok {
		return nil, fmt.Errorf("%w: missing separator after %q", ErrMalformedCommand, commandMarker)
	}

	op, arg, hasArg := strings.Cut(rest, separator)
	switch op {
	case opChange:
		if !hasArg || arg == "" {
			return nil, fmt.Errorf("%w: cd requires a target", ErrMalformedCommand)
		}
		if strings.Contains(arg, separator) {
			return nil, fmt.Errorf("%w: cd takes a single target", ErrMalformedCommand)
		}
		if arg == "." || (arg != RootName && strings.Contains(arg, "/")) {
			return nil, fmt.Errorf("%w: unsupported cd target %q", ErrMalformedCommand, arg)
		}
		return ChangeDirectory{Target: arg}, nil
	case opList:
		if hasArg {
			return nil, fmt.Errorf("%w: ls takes no arguments", ErrMalformedCommand)
		}
		return ListContents{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrMalformedCommand, op)
	}
}

// parseEntry parses a listing line.
func parseEntry(text string) (ListingEntry, error) {
	left, name, ok := strings.Cut(text, separator)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: listing line needs a name", ErrMalformedCommand)
	}
	if strings.Contains(name, separator) {
		return nil, fmt.Errorf("%w: name %q contains a space", ErrMalformedCommand, name)
	}
	if name == ParentTarget || name == "." || name == RootName {
		return nil, fmt.Errorf("%w: reserved name %q", ErrMalformedCommand, name)
	}

	if left == dirPrefix {
		return DirectoryEntry{Name: name}, nil
	}

	size, err := strconv.ParseUint(left, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid size %q", ErrMalformedCommand, left)
	}
	return FileEntry{Name: name, Size: size}, nil
}

// Items parses every line produced by src. Blank lines are skipped but
// still counted for line numbers. The sequence stops after yielding the
// first error.
func Items(src LineSource) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		p := NewParser()
		line := 0
		for {
			text, err := src.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Item{}, fmt.Errorf("reading transcript: %w", err))
				return
			}
			line++

			text = strings.TrimRight(text, "\r")
			if strings.TrimSpace(text) == "" {
				continue
			}

			item, err := p.Parse(line, text)
			if err != nil {
				yield(Item{}, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
