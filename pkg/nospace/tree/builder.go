package tree

import (
	"context"
	"fmt"
	"math/bits"
	"path"

	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
)

var logger = logging.Get("builder")

// Builder replays parsed transcript items against a growing tree. The
// traversal stack holds the directories from the root down to the current
// working directory and is the only path through which nodes are mutated.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	root  *Node
	stack []*Node

	// total is the sum of every distinct file size seen so far. Every
	// directory size is bounded by it.
	total uint64
}

// NewBuilder returns a builder that has not yet entered the root.
func NewBuilder() *Builder {
	return &Builder{}
}

// Cwd returns the path of the current directory, or "" before the root is
// entered.
func (b *Builder) Cwd() string {
	if len(b.stack) == 0 {
		return ""
	}
	p := transcript.RootName
	for _, frame := range b.stack[1:] {
		p = path.Join(p, frame.name)
	}
	return p
}

// Apply replays one item. Errors are *transcript.LineError values.
func (b *Builder) Apply(item transcript.Item) error {
	var err error
	switch {
	case item.Command != nil:
		err = b.applyCommand(item.Command)
	case item.Entry != nil:
		err = b.applyEntry(item.Entry)
	default:
		err = fmt.Errorf("%w: empty item", transcript.ErrMalformedCommand)
	}
	if err != nil {
		return transcript.NewLineError(item.Line, item.Text, err)
	}
	return nil
}

func (b *Builder) applyCommand(cmd transcript.Command) error {
	switch c := cmd.(type) {
	case transcript.ChangeDirectory:
		return b.changeDirectory(c)
	case transcript.ListContents:
		if b.root == nil {
			return transcript.ErrInvalidTranscriptStart
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported command %T", transcript.ErrMalformedCommand, cmd)
	}
}

func (b *Builder) changeDirectory(cd transcript.ChangeDirectory) error {
	if b.root == nil {
		if !cd.IsRoot() {
			return transcript.ErrInvalidTranscriptStart
		}
		b.root = NewDir(transcript.RootName)
		b.stack = []*Node{b.root}
		logger.Debug("entered root")
		return nil
	}

	switch {
	case cd.IsRoot():
		b.stack = b.stack[:1]
	case cd.IsParent():
		if len(b.stack) <= 1 {
			return transcript.ErrCannotAscendPastRoot
		}
		b.stack = b.stack[:len(b.stack)-1]
	default:
		cwd := b.current()
		child, ok := cwd.Child(cd.Target)
		if !ok {
			child = NewDir(cd.Target)
			cwd.insert(child)
		} else if !child.IsDir() {
			return fmt.Errorf("%w: %s", transcript.ErrNotADirectory, cd.Target)
		}
		b.stack = append(b.stack, child)
	}

	logger.Debug("changed directory", "target", cd.Target, "depth", len(b.stack))
	return nil
}

func (b *Builder) applyEntry(entry transcript.ListingEntry) error {
	if b.root == nil {
		return transcript.ErrInvalidTranscriptStart
	}
	cwd := b.current()

	switch e := entry.(type) {
	case transcript.DirectoryEntry:
		if _, ok := cwd.Child(e.Name); !ok {
			cwd.insert(NewDir(e.Name))
		}
		return nil
	case transcript.FileEntry:
		existing, ok := cwd.Child(e.Name)
		if !ok {
			total, carry := bits.Add64(b.total, e.Size, 0)
			if carry != 0 {
				return fmt.Errorf("%w: adding %s (%d) to %d", transcript.ErrSizeOverflow, e.Name, e.Size, b.total)
			}
			b.total = total
			cwd.insert(NewFile(e.Name, e.Size))
			return nil
		}
		if existing.IsDir() {
			return fmt.Errorf("%w: %s", transcript.ErrNameConflict, e.Name)
		}
		if existing.size != e.Size {
			return fmt.Errorf("%w: %s listed as %d, previously %d",
				transcript.ErrInconsistentFileSize, e.Name, e.Size, existing.size)
		}
		logger.Debug("repeated file listing", "cwd", b.Cwd(), "name", e.Name)
		return nil
	default:
		return fmt.Errorf("%w: unsupported entry %T", transcript.ErrMalformedCommand, entry)
	}
}

func (b *Builder) current() *Node {
	return b.stack[len(b.stack)-1]
}

// Finish aggregates sizes and returns the finished tree. It fails with
// ErrInvalidTranscriptStart if the root was never entered.
func (b *Builder) Finish() (*Tree, error) {
	if b.root == nil {
		return nil, transcript.NewLineError(0, "",
			fmt.Errorf("%w: transcript is empty", transcript.ErrInvalidTranscriptStart))
	}
	t := &Tree{root: b.root}
	t.Aggregate()
	return t, nil
}

// Build parses src and replays it into a tree.
func Build(src transcript.LineSource) (*Tree, error) {
	return BuildContext(context.Background(), src)
}

// BuildContext parses src and replays it into a tree, checking ctx between
// lines. No partial tree is returned on error.
func BuildContext(ctx context.Context, src transcript.LineSource) (*Tree, error) {
	b := NewBuilder()
	lines := 0
	for item, err := range transcript.Items(src) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Apply(item); err != nil {
			return nil, err
		}
		lines++
	}

	t, err := b.Finish()
	if err != nil {
		return nil, err
	}
	logger.Debug("tree built", "items", lines, "total", t.TotalSize())
	return t, nil
}
