package tui

import (
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/tree"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// Tree view icons using Unicode symbols.
const (
	iconExpanded  = "▼" // Black down-pointing triangle
	iconCollapsed = "▶" // Black right-pointing triangle
	iconFile      = "•" // Bullet
)

// Marks shown after a node's name.
const (
	markSmall     = "[small]"
	markCandidate = "[delete]"
)

// row is one visible line of the tree.
type row struct {
	node  *tree.Node
	path  string
	depth int
}

// TreeView displays a reconstructed tree with expand/collapse and
// scrolling. Small directories and the deletion candidate are marked.
type TreeView struct {
	tree      *tree.Tree
	flat      []row
	cursor    int
	offset    int
	visible   int
	expanded  map[string]bool
	small     map[string]bool
	candidate string
}

// NewTreeView creates a TreeView for an analysis result. Only the root
// starts expanded.
func NewTreeView(r *analyze.Result) *TreeView {
	tv := &TreeView{
		visible:  20,
		expanded: map[string]bool{"/": true},
	}
	tv.SetResult(r)
	return tv
}

// SetResult replaces the displayed result. Expanded directories and the
// cursor position are kept when their paths still exist.
func (tv *TreeView) SetResult(r *analyze.Result) {
	current := tv.SelectedPath()

	tv.tree = nil
	tv.small = make(map[string]bool)
	tv.candidate = ""
	if r != nil {
		tv.tree = r.Tree
		for _, d := range r.SmallDirs {
			tv.small[d.Path] = true
		}
		if r.Candidate != nil {
			tv.candidate = r.Candidate.Path
		}
	}

	tv.refresh()
	if current != "" {
		tv.moveTo(current)
	}
}

// refresh rebuilds the flat list from the expanded set.
func (tv *TreeView) refresh() {
	tv.flat = tv.flat[:0]
	if tv.tree == nil {
		tv.cursor, tv.offset = 0, 0
		return
	}

	stack := []row{{node: tv.tree.Root(), path: "/"}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tv.flat = append(tv.flat, top)

		if !top.node.IsDir() || !tv.expanded[top.path] {
			continue
		}
		for _, child := range slices.Backward(top.node.Children()) {
			stack = append(stack, row{
				node:  child,
				path:  path.Join(top.path, child.Name()),
				depth: top.depth + 1,
			})
		}
	}

	tv.cursor = min(tv.cursor, len(tv.flat)-1)
	tv.cursor = max(tv.cursor, 0)
}

// Len returns the number of visible rows.
func (tv *TreeView) Len() int {
	return len(tv.flat)
}

// MoveUp moves the cursor up n rows.
func (tv *TreeView) MoveUp(n int) {
	tv.setCursor(tv.cursor - n)
}

// MoveDown moves the cursor down n rows.
func (tv *TreeView) MoveDown(n int) {
	tv.setCursor(tv.cursor + n)
}

// Top moves the cursor to the root.
func (tv *TreeView) Top() {
	tv.setCursor(0)
}

// Bottom moves the cursor to the last visible row.
func (tv *TreeView) Bottom() {
	tv.setCursor(len(tv.flat) - 1)
}

func (tv *TreeView) setCursor(i int) {
	if len(tv.flat) == 0 {
		return
	}
	tv.cursor = max(0, min(i, len(tv.flat)-1))
	tv.ensureVisible()
}

// ensureVisible adjusts offset to keep the cursor on screen.
func (tv *TreeView) ensureVisible() {
	if tv.cursor < tv.offset {
		tv.offset = tv.cursor
	} else if tv.cursor >= tv.offset+tv.visible {
		tv.offset = tv.cursor - tv.visible + 1
	}
	if tv.offset < 0 {
		tv.offset = 0
	}
}

// Toggle expands or collapses the directory under the cursor.
func (tv *TreeView) Toggle() {
	r, ok := tv.selected()
	if !ok || !r.node.IsDir() {
		return
	}
	if tv.expanded[r.path] {
		delete(tv.expanded, r.path)
	} else {
		tv.expanded[r.path] = true
	}
	tv.refresh()
}

// Expand opens the directory under the cursor, or moves into it if it is
// already open.
func (tv *TreeView) Expand() {
	r, ok := tv.selected()
	if !ok || !r.node.IsDir() {
		return
	}
	if !tv.expanded[r.path] {
		tv.expanded[r.path] = true
		tv.refresh()
		return
	}
	if r.node.Len() > 0 {
		tv.MoveDown(1)
	}
}

// Collapse closes the directory under the cursor, or moves to the parent.
func (tv *TreeView) Collapse() {
	r, ok := tv.selected()
	if !ok {
		return
	}
	if r.node.IsDir() && tv.expanded[r.path] && r.path != "/" {
		delete(tv.expanded, r.path)
		tv.refresh()
		return
	}
	if r.path != "/" {
		tv.moveTo(path.Dir(r.path))
	}
}

// JumpToCandidate expands the candidate's ancestors and moves the cursor
// onto it. It reports false when there is no candidate.
func (tv *TreeView) JumpToCandidate() bool {
	if tv.candidate == "" {
		return false
	}
	for dir := tv.candidate; dir != "/"; {
		dir = path.Dir(dir)
		tv.expanded[dir] = true
	}
	tv.refresh()
	return tv.moveTo(tv.candidate)
}

// moveTo places the cursor on the row with the given path.
func (tv *TreeView) moveTo(p string) bool {
	for i, r := range tv.flat {
		if r.path == p {
			tv.setCursor(i)
			return true
		}
	}
	return false
}

func (tv *TreeView) selected() (row, bool) {
	if tv.cursor < 0 || tv.cursor >= len(tv.flat) {
		return row{}, false
	}
	return tv.flat[tv.cursor], true
}

// Selected returns the node under the cursor.
func (tv *TreeView) Selected() *tree.Node {
	r, ok := tv.selected()
	if !ok {
		return nil
	}
	return r.node
}

// SelectedPath returns the absolute path of the node under the cursor.
func (tv *TreeView) SelectedPath() string {
	r, ok := tv.selected()
	if !ok {
		return ""
	}
	return r.path
}

// View renders the tree within the given dimensions.
func (tv *TreeView) View(width, height int) string {
	if len(tv.flat) == 0 {
		return center(mutedTextStyle.Render("No tree to display"), width) + "\n"
	}

	tv.visible = max(height, 1)
	tv.ensureVisible()

	var b strings.Builder
	end := min(tv.offset+tv.visible, len(tv.flat))
	for i := tv.offset; i < end; i++ {
		b.WriteString(tv.renderRow(tv.flat[i], width, i == tv.cursor))
		b.WriteString("\n")
	}
	for range tv.visible - (end - tv.offset) {
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow renders a single row with the size right-aligned.
func (tv *TreeView) renderRow(r row, width int, isCursor bool) string {
	var content strings.Builder
	content.WriteString(strings.Repeat("  ", r.depth))

	switch {
	case !r.node.IsDir():
		content.WriteString(iconFile)
	case tv.expanded[r.path]:
		content.WriteString(iconExpanded)
	default:
		content.WriteString(iconCollapsed)
	}
	content.WriteString(" ")
	content.WriteString(r.node.Name())

	var mark string
	switch {
	case r.path == tv.candidate:
		mark = markCandidate
	case r.node.IsDir() && tv.small[r.path]:
		mark = markSmall
	}

	sizeStr := types.FormatSize(r.node.Size())

	plain := content.String()
	if mark != "" {
		plain += " " + mark
	}
	padding := max(width-lipgloss.Width(plain)-lipgloss.Width(sizeStr)-1, 1)

	if isCursor {
		return treeRowHighlightStyle.Width(width).Render(plain + strings.Repeat(" ", padding) + sizeStr)
	}

	styled := content.String()
	switch mark {
	case markCandidate:
		styled += " " + candidateMarkStyle.Render(mark)
	case markSmall:
		styled += " " + smallMarkStyle.Render(mark)
	}
	styled += strings.Repeat(" ", padding) + treeSizeStyle.Render(sizeStr)
	return treeRowNormalStyle.Width(width).Render(styled)
}
