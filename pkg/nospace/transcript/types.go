// Package transcript parses shell transcripts of a filesystem walk.
//
// A transcript is a sequence of command lines (`$ cd <target>`, `$ ls`) and
// the listing lines printed by `ls` (`dir <name>`, `<size> <name>`). The
// parser turns each line into exactly one Command or ListingEntry and tracks
// whether it is currently inside the output of an `ls`.
package transcript

import "fmt"

// RootName is the reserved name of the root directory.
const RootName = "/"

// ParentTarget is the `cd` target that moves to the parent directory.
const ParentTarget = ".."

// Command is a parsed command line. The set of implementations is closed:
// ChangeDirectory and ListContents.
type Command interface {
	isCommand()
	String() string
}

// ChangeDirectory moves to Target, which is ParentTarget, RootName or the
// name of a child of the current directory.
type ChangeDirectory struct {
	Target string
}

func (ChangeDirectory) isCommand() {}

// String returns the command as it appears in a transcript.
func (c ChangeDirectory) String() string {
	return "$ cd " + c.Target
}

// IsParent reports whether the command ascends to the parent directory.
func (c ChangeDirectory) IsParent() bool {
	return c.Target == ParentTarget
}

// IsRoot reports whether the command moves to the root directory.
func (c ChangeDirectory) IsRoot() bool {
	return c.Target == RootName
}

// ListContents lists the current directory. Lines following it are
// listing entries until the next command.
type ListContents struct{}

func (ListContents) isCommand() {}

// String returns the command as it appears in a transcript.
func (ListContents) String() string {
	return "$ ls"
}

// ListingEntry is one line of `ls` output. The set of implementations is
// closed: DirectoryEntry and FileEntry.
type ListingEntry interface {
	isListingEntry()
	EntryName() string
	String() string
}

// DirectoryEntry announces a child directory.
type DirectoryEntry struct {
	Name string
}

func (DirectoryEntry) isListingEntry() {}

// EntryName returns the directory name.
func (e DirectoryEntry) EntryName() string { return e.Name }

// String returns the entry as it appears in a transcript.
func (e DirectoryEntry) String() string {
	return "dir " + e.Name
}

// FileEntry announces a file and its size in bytes.
type FileEntry struct {
	Name string
	Size uint64
}

func (FileEntry) isListingEntry() {}

// EntryName returns the file name.
func (e FileEntry) EntryName() string { return e.Name }

// String returns the entry as it appears in a transcript.
func (e FileEntry) String() string {
	return fmt.Sprintf("%d %s", e.Size, e.Name)
}

// Item is the result of parsing one transcript line. Exactly one of
// Command and Entry is set.
type Item struct {
	// Line is the 1-based line number in the transcript.
	Line int

	// Text is the raw line.
	Text string

	Command Command
	Entry   ListingEntry
}

// IsCommand reports whether the item carries a command.
func (i Item) IsCommand() bool {
	return i.Command != nil
}
