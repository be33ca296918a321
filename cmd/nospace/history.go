package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/history"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past analyses and recordings",
	Long: `View the history of analyze and record operations.

Each run is stored as one JSON file under the history directory
(default: $XDG_DATA_HOME/nospace/history).`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific operation",
	Long:  `Display an operation by its ID or by a unique prefix of it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the configured history directory.
func openHistory() (*history.History, error) {
	path := config.DefaultHistoryPath()
	if cfg != nil {
		path = cfg.HistoryPath()
	}
	h, err := history.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return h, nil
}

// runHistory lists recent operations.
func runHistory(cmd *cobra.Command, _ []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}

	entries, err := h.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'nospace <transcript>' to analyze a transcript.")
		return nil
	}

	writeHistoryList(cmd.OutOrStdout(), entries)
	return nil
}

// writeHistoryList prints one row per entry.
func writeHistoryList(w io.Writer, entries []history.Entry) {
	fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-12s  %-12s  %s\n", "ID", "TIME", "TYPE", "TOTAL", "DELETE", "SOURCE")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, e := range entries {
		candidate := "-"
		if e.Summary.Candidate != nil {
			candidate = types.FormatSize(e.Summary.Candidate.Size)
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-12s  %-12s  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Operation,
			types.FormatSize(e.Summary.TotalSize),
			candidate,
			truncateString(e.Source, 40),
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", 110))
	fmt.Fprintf(w, "Showing %d entries. Use 'nospace history show <id>' for details.\n", len(entries))
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}

	entry, err := h.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	writeHistoryEntry(cmd.OutOrStdout(), entry)
	return nil
}

// writeHistoryEntry prints every field of an entry.
func writeHistoryEntry(w io.Writer, e *history.Entry) {
	fmt.Fprintln(w, "Operation Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:           %s\n", e.ID)
	fmt.Fprintf(w, "Timestamp:    %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Operation:    %s\n", e.Operation)
	fmt.Fprintf(w, "Source:       %s\n", e.Source)
	if e.Digest != "" {
		fmt.Fprintf(w, "Digest:       %s\n", e.Digest)
	}
	fmt.Fprintf(w, "Total:        %s (%s)\n", types.FormatSize(e.Summary.TotalSize), types.FormatExact(e.Summary.TotalSize))
	fmt.Fprintf(w, "Dirs/Files:   %d / %d\n", e.Summary.Dirs, e.Summary.Files)

	if e.Operation != history.OpAnalyze {
		return
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Small limit:  %s\n", types.FormatExact(e.Options.SmallLimit))
	fmt.Fprintf(w, "Small sum:    %s\n", types.FormatExact(e.Summary.SmallSum))
	fmt.Fprintf(w, "Capacity:     %s\n", types.FormatExact(e.Options.Capacity))
	fmt.Fprintf(w, "Required:     %s\n", types.FormatExact(e.Options.Required))
	fmt.Fprintf(w, "Need to free: %s\n", types.FormatExact(e.Summary.NeedToFree))
	if e.Summary.Candidate != nil {
		fmt.Fprintf(w, "Delete:       %s (%s)\n", e.Summary.Candidate.Path, types.FormatExact(e.Summary.Candidate.Size))
	} else {
		fmt.Fprintln(w, "Delete:       -")
	}
	fmt.Fprintf(w, "Cached:       %t\n", e.Summary.Cached)
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}

	retentionDays := cfg.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := h.Clean(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
