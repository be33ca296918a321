package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// renderAppHeader renders the title line with the tree totals. live adds
// an indicator while the transcript is being watched.
func renderAppHeader(r *analyze.Result, live bool) string {
	header := " " + titleStyle.Render("NOSPACE")
	if r != nil {
		header += mutedTextStyle.Render(fmt.Sprintf("  %s  •  %s dirs  •  %s files",
			types.FormatSize(r.TotalSize),
			humanize.Comma(int64(r.Dirs)),
			humanize.Comma(int64(r.Files))))
	}
	if live {
		header += successTextStyle.Render("  ● LIVE")
	}
	return header
}

// renderStats renders the answers to both queries on one line.
func renderStats(r *analyze.Result) string {
	if r == nil {
		return ""
	}

	parts := []string{
		stat(fmt.Sprintf("≤ %s", types.FormatSize(r.SmallLimit)), types.FormatExact(r.SmallSum)),
		stat("unused", types.FormatSize(r.Unused)),
		stat("need", types.FormatSize(r.NeedToFree)),
	}

	switch {
	case r.NeedToFree == 0:
		parts = append(parts, successTextStyle.Render("enough free space"))
	case r.Candidate == nil:
		parts = append(parts, warningTextStyle.Render("no directory frees enough space"))
	default:
		parts = append(parts, stat("delete",
			fmt.Sprintf("%s (%s)", r.Candidate.Path, types.FormatExact(r.Candidate.Size))))
	}
	return " " + strings.Join(parts, mutedTextStyle.Render("  |  "))
}

func stat(label, value string) string {
	return statsLabelStyle.Render(label+" ") + statsValueStyle.Render(value)
}

// renderMetrics renders how the result was produced.
func renderMetrics(r *analyze.Result) string {
	if r == nil {
		return ""
	}
	var parts []string
	if r.Cached {
		parts = append(parts, "cached")
	}
	if r.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("Time: %v", r.Elapsed.Round(time.Microsecond)))
	}
	if len(parts) == 0 {
		return ""
	}
	return mutedTextStyle.Render("  " + strings.Join(parts, "  |  "))
}
