package tree

import (
	"iter"
	"path"
	"slices"
)

// Tree is a reconstructed directory tree. It is read-only once built; only
// Aggregate writes, and only to the directories' computed sizes.
type Tree struct {
	root *Node
}

// Entry is a node together with its absolute path in the tree.
type Entry struct {
	Path string
	Node *Node
}

// Size returns the entry's file size or computed directory size.
func (e Entry) Size() uint64 {
	return e.Node.Size()
}

// Root returns the root directory.
func (t *Tree) Root() *Node {
	return t.root
}

// TotalSize returns the computed size of the root.
func (t *Tree) TotalSize() uint64 {
	return t.root.size
}

// Aggregate computes every directory's size from its children, children
// before parents. It walks with an explicit stack, so deep trees do not
// grow the call stack, and can be repeated any number of times. The builder
// rejects file sizes whose sum overflows, so the sums here cannot wrap.
func (t *Tree) Aggregate() {
	type frame struct {
		node     *Node
		expanded bool
	}

	stack := []frame{{node: t.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !top.expanded {
			stack = append(stack, frame{node: top.node, expanded: true})
			for _, child := range top.node.children {
				if child.IsDir() {
					stack = append(stack, frame{node: child})
				}
			}
			continue
		}

		var total uint64
		for _, child := range top.node.children {
			total += child.size
		}
		top.node.size = total
		top.node.aggregated = true
	}
}

// walk yields every node depth-first in pre-order, siblings by name.
func (t *Tree) walk() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		stack := []Entry{{Path: t.root.name, Node: t.root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(top) {
				return
			}
			if !top.Node.IsDir() {
				continue
			}

			children := top.Node.childrenByName()
			for _, child := range slices.Backward(children) {
				stack = append(stack, Entry{Path: path.Join(top.Path, child.name), Node: child})
			}
		}
	}
}

// Directories yields every directory, the root first, depth-first. The
// sequence can be ranged over any number of times.
func (t *Tree) Directories() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range t.walk() {
			if e.Node.IsDir() && !yield(e) {
				return
			}
		}
	}
}

// Files yields every file depth-first.
func (t *Tree) Files() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range t.walk() {
			if !e.Node.IsDir() && !yield(e) {
				return
			}
		}
	}
}

// AtMost yields the directories whose computed size is at most limit.
func (t *Tree) AtMost(limit uint64) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range t.Directories() {
			if e.Size() <= limit && !yield(e) {
				return
			}
		}
	}
}

// SumAtMost sums the computed sizes of the directories yielded by AtMost.
// Nested directories are counted once for each qualifying ancestor.
func (t *Tree) SumAtMost(limit uint64) uint64 {
	var sum uint64
	for e := range t.AtMost(limit) {
		sum += e.Size()
	}
	return sum
}

// SmallestAtLeast returns the directory with the smallest computed size
// that is at least bound. It reports false when no directory qualifies.
func (t *Tree) SmallestAtLeast(bound uint64) (Entry, bool) {
	var best Entry
	found := false
	for e := range t.Directories() {
		if e.Size() < bound {
			continue
		}
		if !found || e.Size() < best.Size() {
			best = e
			found = true
		}
	}
	return best, found
}

// Counts returns the number of directories, root included, and files.
func (t *Tree) Counts() (dirs, files int) {
	for e := range t.walk() {
		if e.Node.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	return dirs, files
}

// Lookup returns the node at an absolute path such as "/a/e".
func (t *Tree) Lookup(p string) (*Node, bool) {
	p = path.Clean("/" + p)
	node := t.root
	if p == "/" {
		return node, true
	}
	for _, name := range splitPath(p) {
		child, ok := node.Child(name)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

func splitPath(p string) []string {
	var parts []string
	for p != "/" && p != "." && p != "" {
		dir, name := path.Split(p)
		parts = append(parts, name)
		p = path.Clean(dir)
	}
	slices.Reverse(parts)
	return parts
}
