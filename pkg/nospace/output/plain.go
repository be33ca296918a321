package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
)

// PlainFormatter prints exact byte counts as aligned key/value lines,
// followed by the small directories. No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *analyze.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	rows := [][2]string{
		{"source", r.Source},
		{"total", fmt.Sprint(r.TotalSize)},
		{"dirs", fmt.Sprint(r.Dirs)},
		{"files", fmt.Sprint(r.Files)},
		{"small_limit", fmt.Sprint(r.SmallLimit)},
		{"small_sum", fmt.Sprint(r.SmallSum)},
		{"capacity", fmt.Sprint(r.Capacity)},
		{"required", fmt.Sprint(r.Required)},
		{"unused", fmt.Sprint(r.Unused)},
		{"need_to_free", fmt.Sprint(r.NeedToFree)},
	}
	if r.Candidate != nil {
		rows = append(rows,
			[2]string{"candidate", r.Candidate.Path},
			[2]string{"candidate_size", fmt.Sprint(r.Candidate.Size)})
	} else {
		rows = append(rows, [2]string{"candidate", "-"})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}

	if len(r.SmallDirs) > 0 {
		if _, err := fmt.Fprintf(tw, "\nSIZE\tSMALL DIRECTORY\n"); err != nil {
			return err
		}
		for _, d := range r.SmallDirs {
			if _, err := fmt.Fprintf(tw, "%d\t%s\n", d.Size, d.Path); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
