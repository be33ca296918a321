package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/transcript"
)

var exampleLines = []string{
	"$ cd /",
	"$ ls",
	"dir a",
	"14848514 b.txt",
	"8504156 c.dat",
	"dir d",
	"$ cd a",
	"$ ls",
	"dir e",
	"29116 f",
	"2557 g",
	"62596 h.lst",
	"$ cd e",
	"$ ls",
	"584 i",
	"$ cd ..",
	"$ cd ..",
	"$ cd d",
	"$ ls",
	"4060174 j",
	"8033020 d.log",
	"5626152 d.ext",
	"7214296 k",
}

// Helper to analyze the example transcript.
func createTestResult(t *testing.T) *analyze.Result {
	t.Helper()
	r, err := analyze.Run(context.Background(), "example", transcript.Lines(exampleLines...), analyze.DefaultOptions())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return r
}

func visiblePaths(tv *TreeView) []string {
	paths := make([]string, len(tv.flat))
	for i, r := range tv.flat {
		paths[i] = r.path
	}
	return paths
}

func TestNewTreeView(t *testing.T) {
	tv := NewTreeView(createTestResult(t))

	if tv.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", tv.cursor)
	}
	// Root expanded with four children in display order.
	want := []string{"/", "/d", "/b.txt", "/c.dat", "/a"}
	got := visiblePaths(tv)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("visible rows = %v, want %v", got, want)
	}
	if !tv.small["/a"] || !tv.small["/a/e"] {
		t.Errorf("expected /a and /a/e marked small, got %v", tv.small)
	}
	if tv.candidate != "/d" {
		t.Errorf("expected candidate /d, got %q", tv.candidate)
	}
}

func TestNewTreeViewNil(t *testing.T) {
	tv := NewTreeView(nil)

	if tv.Len() != 0 {
		t.Errorf("expected no rows, got %d", tv.Len())
	}
	if tv.Selected() != nil {
		t.Error("expected no selection")
	}
	tv.MoveDown(1)
	tv.Toggle()
	if tv.JumpToCandidate() {
		t.Error("expected no candidate")
	}
	if !strings.Contains(tv.View(40, 5), "No tree to display") {
		t.Error("expected empty state message")
	}
}

func TestTreeViewNavigation(t *testing.T) {
	tv := NewTreeView(createTestResult(t))

	tv.MoveUp(1)
	if tv.cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", tv.cursor)
	}

	tv.MoveDown(1)
	if got := tv.SelectedPath(); got != "/d" {
		t.Errorf("expected /d, got %s", got)
	}

	tv.MoveDown(100)
	if got := tv.SelectedPath(); got != "/a" {
		t.Errorf("expected cursor clamped to /a, got %s", got)
	}

	tv.Top()
	if tv.cursor != 0 {
		t.Errorf("expected top, got %d", tv.cursor)
	}
	tv.Bottom()
	if tv.cursor != tv.Len()-1 {
		t.Errorf("expected bottom, got %d", tv.cursor)
	}
}

func TestTreeViewToggle(t *testing.T) {
	tv := NewTreeView(createTestResult(t))

	tv.Bottom() // /a
	tv.Toggle()
	want := []string{"/", "/d", "/b.txt", "/c.dat", "/a", "/a/h.lst", "/a/f", "/a/g", "/a/e"}
	if got := visiblePaths(tv); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("after expand = %v, want %v", got, want)
	}

	tv.Toggle()
	if tv.Len() != 5 {
		t.Errorf("expected 5 rows after collapse, got %d", tv.Len())
	}

	// Toggling a file does nothing.
	tv.Top()
	tv.MoveDown(2) // /b.txt
	tv.Toggle()
	if tv.Len() != 5 {
		t.Errorf("expected file toggle to be a no-op, got %d rows", tv.Len())
	}
}

func TestTreeViewExpandCollapse(t *testing.T) {
	tv := NewTreeView(createTestResult(t))

	tv.MoveDown(1) // /d
	tv.Expand()
	if !tv.expanded["/d"] {
		t.Fatal("expected /d expanded")
	}
	tv.Expand()
	if got := tv.SelectedPath(); got != "/d/d.log" {
		t.Errorf("expected second expand to move into /d, got %s", got)
	}

	tv.Collapse()
	if got := tv.SelectedPath(); got != "/d" {
		t.Errorf("expected collapse on a file to move to parent, got %s", got)
	}
	tv.Collapse()
	if tv.expanded["/d"] {
		t.Error("expected /d collapsed")
	}

	tv.Top()
	tv.Collapse()
	if !tv.expanded["/"] {
		t.Error("root must stay expanded")
	}
}

func TestTreeViewJumpToCandidate(t *testing.T) {
	r := createTestResult(t)
	r.Candidate = &analyze.DirSummary{Path: "/a/e", Size: 584}
	tv := NewTreeView(r)

	if !tv.JumpToCandidate() {
		t.Fatal("expected jump to succeed")
	}
	if got := tv.SelectedPath(); got != "/a/e" {
		t.Errorf("expected cursor on /a/e, got %s", got)
	}
	if !tv.expanded["/a"] {
		t.Error("expected ancestors expanded")
	}
}

func TestTreeViewSetResultKeepsState(t *testing.T) {
	tv := NewTreeView(createTestResult(t))
	tv.Bottom()
	tv.Toggle()
	tv.MoveDown(4) // /a/e

	tv.SetResult(createTestResult(t))

	if got := tv.SelectedPath(); got != "/a/e" {
		t.Errorf("expected cursor kept on /a/e, got %s", got)
	}
	if !tv.expanded["/a"] {
		t.Error("expected /a to stay expanded")
	}
}

func TestTreeViewRender(t *testing.T) {
	tv := NewTreeView(createTestResult(t))
	tv.Bottom()

	view := tv.View(60, 10)
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rendered rows, got %d", len(lines))
	}
	if !strings.Contains(view, markCandidate) {
		t.Error("expected candidate mark")
	}
	if !strings.Contains(view, markSmall) {
		t.Error("expected small mark")
	}
	if !strings.Contains(view, "b.txt") {
		t.Error("expected file row")
	}
}

func TestTreeViewScroll(t *testing.T) {
	tv := NewTreeView(createTestResult(t))
	_ = tv.View(40, 2)

	tv.Bottom()
	if tv.offset != tv.Len()-2 {
		t.Errorf("expected offset %d, got %d", tv.Len()-2, tv.offset)
	}
	tv.Top()
	if tv.offset != 0 {
		t.Errorf("expected offset 0, got %d", tv.offset)
	}
}
