// Package tree reconstructs a directory tree from a parsed transcript and
// aggregates directory sizes.
package tree

import (
	"cmp"
	"slices"
)

// Kind distinguishes files from directories.
type Kind uint8

const (
	// KindFile is a file with a fixed size.
	KindFile Kind = iota
	// KindDir is a directory with named children.
	KindDir
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Node is a file or a directory. Each node is owned by exactly one parent;
// there are no back-pointers.
type Node struct {
	name string
	kind Kind

	// size is the file size, or the directory's computed size once
	// aggregated is set.
	size       uint64
	aggregated bool

	children map[string]*Node
}

// NewFile returns a file node.
func NewFile(name string, size uint64) *Node {
	return &Node{name: name, kind: KindFile, size: size}
}

// NewDir returns an empty directory node without a computed size.
func NewDir(name string) *Node {
	return &Node{name: name, kind: KindDir, children: make(map[string]*Node)}
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Kind returns whether the node is a file or a directory.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.kind == KindDir }

// Size returns a file's size or a directory's computed size. A directory
// that has not been aggregated reports zero.
func (n *Node) Size() uint64 { return n.size }

// ComputedSize returns a directory's aggregated size and whether it has
// been computed. Files always report their size.
func (n *Node) ComputedSize() (uint64, bool) {
	if n.kind == KindFile {
		return n.size, true
	}
	return n.size, n.aggregated
}

// Child returns the child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.children) }

// Children returns the direct children in display order: largest first,
// directories before files on equal size, then by name.
func (n *Node) Children() []*Node {
	children := n.childrenByName()
	slices.SortStableFunc(children, func(a, b *Node) int {
		if c := cmp.Compare(b.size, a.size); c != 0 {
			return c
		}
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return 0
	})
	return children
}

// childrenByName returns the direct children sorted by name.
func (n *Node) childrenByName() []*Node {
	children := make([]*Node, 0, len(n.children))
	for _, child := range n.children {
		children = append(children, child)
	}
	slices.SortFunc(children, func(a, b *Node) int {
		return cmp.Compare(a.name, b.name)
	})
	return children
}

func (n *Node) insert(child *Node) {
	n.children[child.name] = child
}
