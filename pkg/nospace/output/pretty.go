package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// PrettyFormatter formats output with colors and boxes using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *analyze.Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatSmall(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with transcript metadata.
func (f *PrettyFormatter) formatHeader(r *analyze.Result) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Source:"), ValueStyle.Render(r.Source)))

	info := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Total:"), SizeStyle.Render(sizeWithExact(r.TotalSize))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Dirs:"), ValueStyle.Render(fmt.Sprint(r.Dirs))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Files:"), ValueStyle.Render(fmt.Sprint(r.Files))),
	}
	if r.Cached {
		info = append(info, MutedStyle.Render("cached"))
	} else {
		info = append(info, MutedStyle.Render(formatDuration(r.Elapsed)))
	}
	lines = append(lines, strings.Join(info, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatSmall lists the directories within the small limit.
func (f *PrettyFormatter) formatSmall(r *analyze.Result) string {
	var sb strings.Builder

	title := fmt.Sprintf("Directories at most %s", types.FormatExact(r.SmallLimit))
	sb.WriteString(TitleStyle.Render(title))
	sb.WriteString("\n")

	if len(r.SmallDirs) == 0 {
		sb.WriteString(MutedStyle.Render("  none"))
		sb.WriteString("\n")
		return sb.String()
	}

	sizes := make([]string, len(r.SmallDirs))
	width := len("SIZE")
	for i, d := range r.SmallDirs {
		sizes[i] = types.FormatExact(d.Size)
		width = max(width, len(sizes[i]))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n", TableHeaderStyle.Render(padLeft("SIZE", width)), TableHeaderStyle.Render("PATH")))
	for i, d := range r.SmallDirs {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", SizeStyle.Render(padLeft(sizes[i], width)), PathStyle.Render(d.Path)))
	}
	sb.WriteString(fmt.Sprintf("  %s %s\n", LabelStyle.Render("Sum:"), SuccessStyle.Render(sizeWithExact(r.SmallSum))))
	return sb.String()
}

// formatFooter builds the footer box with the deletion answer.
func (f *PrettyFormatter) formatFooter(r *analyze.Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Unused:"), ValueStyle.Render(sizeWithExact(r.Unused))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Need:"), ValueStyle.Render(sizeWithExact(r.NeedToFree))),
	}

	switch {
	case r.NeedToFree == 0:
		parts = append(parts, SuccessStyle.Render("enough free space"))
	case r.Candidate == nil:
		parts = append(parts, ErrorStyle.Render("no directory frees enough space"))
	default:
		parts = append(parts, fmt.Sprintf("%s %s %s",
			LabelStyle.Render("Delete:"),
			WarningStyle.Render(r.Candidate.Path),
			SizeStyle.Render(sizeWithExact(r.Candidate.Size))))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

// sizeWithExact renders "24,933,642 (23.8 MiB)".
func sizeWithExact(n uint64) string {
	return fmt.Sprintf("%s (%s)", types.FormatExact(n), types.FormatSize(n))
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
