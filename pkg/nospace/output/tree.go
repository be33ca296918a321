package output

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/tree"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// TreeFormatter draws the reconstructed tree with box-drawing connectors,
// largest children first. Small directories and the deletion candidate are
// marked.
type TreeFormatter struct {
	// MaxDepth limits how deep the tree is drawn. Zero means unlimited.
	MaxDepth int
}

type treeLine struct {
	node   *tree.Node
	path   string
	prefix string
	last   bool
	depth  int
}

// Format writes the formatted output to the buffer.
func (f *TreeFormatter) Format(w *bytes.Buffer, r *analyze.Result) error {
	if r.Tree == nil {
		return ErrNoTree
	}

	small := make(map[string]bool, len(r.SmallDirs))
	for _, d := range r.SmallDirs {
		small[d.Path] = true
	}
	candidate := ""
	if r.Candidate != nil {
		candidate = r.Candidate.Path
	}

	root := r.Tree.Root()
	stack := []treeLine{{node: root, path: root.Name(), last: true}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w.WriteString(f.renderLine(top, small[top.path], top.path == candidate))

		if !top.node.IsDir() || (f.MaxDepth > 0 && top.depth >= f.MaxDepth) {
			continue
		}

		childPrefix := top.prefix
		if top.depth > 0 {
			if top.last {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}

		children := top.node.Children()
		for i, child := range slices.Backward(children) {
			stack = append(stack, treeLine{
				node:   child,
				path:   joinPath(top.path, child.Name()),
				prefix: childPrefix,
				last:   i == len(children)-1,
				depth:  top.depth + 1,
			})
		}
	}
	return nil
}

func (f *TreeFormatter) renderLine(l treeLine, isSmall, isCandidate bool) string {
	connector := ""
	if l.depth > 0 {
		connector = "├── "
		if l.last {
			connector = "└── "
		}
	}

	name := PathStyle.Render(l.node.Name())
	if l.node.IsDir() {
		name = TitleStyle.Render(l.node.Name())
	}

	var marks []string
	if isSmall {
		marks = append(marks, SuccessStyle.Render("small"))
	}
	if isCandidate {
		marks = append(marks, WarningStyle.Render("delete"))
	}

	line := fmt.Sprintf("%s%s%s %s", l.prefix, MutedStyle.Render(connector), name,
		SizeStyle.Render(types.FormatExact(l.node.Size())))
	if len(marks) > 0 {
		line += " [" + strings.Join(marks, ",") + "]"
	}
	return line + "\n"
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return dir + name
	}
	return dir + "/" + name
}

func init() {
	Register("tree", func() Formatter {
		return &TreeFormatter{}
	})
}

// Ensure TreeFormatter implements Formatter.
var _ Formatter = (*TreeFormatter)(nil)
