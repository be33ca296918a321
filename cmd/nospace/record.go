package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/recorder"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
	"github.com/spf13/cobra"
)

var (
	recordOutput     string
	recordWorkers    int
	recordSkipHidden bool
	recordAnalyze    bool
	recordExclude    []string
)

var recordCmd = &cobra.Command{
	Use:   "record <dir>",
	Short: "Record a transcript of a real directory",
	Long: `Walk a directory and write the transcript a shell session exploring it
with cd and ls would have produced. The directory becomes the transcript's
root.

Names containing whitespace or a slash cannot be written as listing lines
and are skipped, as are symlinks and special files. Entries matching an
--exclude glob, by name or by path relative to <dir>, are skipped too.

With --analyze the recorded transcript is analyzed right away using the
filesystem's real capacity instead of the configured one.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "write the transcript to a file instead of stdout")
	recordCmd.Flags().IntVar(&recordWorkers, "workers", 0, "walker goroutines (0 = auto)")
	recordCmd.Flags().BoolVar(&recordSkipHidden, "skip-hidden", false, "skip names starting with a dot")
	recordCmd.Flags().StringSliceVarP(&recordExclude, "exclude", "e", nil, "glob patterns to skip (repeatable)")
	recordCmd.Flags().BoolVarP(&recordAnalyze, "analyze", "a", false, "analyze the recording using the filesystem's capacity")
	rootCmd.AddCommand(recordCmd)
}

// runRecord records a directory and optionally analyzes the result.
func runRecord(cmd *cobra.Command, args []string) error {
	root, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var buf bytes.Buffer
	stats, err := recorder.Record(ctx, recorder.Options{
		Root:       root,
		Workers:    recordWorkers,
		SkipHidden: recordSkipHidden,
		Exclude:    recordExclude,
	}, &buf)
	if err != nil {
		return err
	}

	// Status goes to stderr when the transcript itself goes to stdout.
	status := cmd.OutOrStdout()
	if recordOutput == "" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
		status = cmd.ErrOrStderr()
	} else if err := os.WriteFile(recordOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	if !getQuiet() {
		writeRecordStats(status, stats)
	}

	s, err := sessionFromFlags()
	if err != nil {
		return err
	}
	defer s.Close()

	if s.history != nil {
		if _, err := s.history.LogRecord(stats.Root, stats.Dirs, stats.Files, stats.TotalSize); err != nil {
			logger.Warn("history write failed", "error", err)
		}
	}

	if !recordAnalyze {
		return nil
	}

	total, _, err := recorder.Capacity(root)
	if err != nil {
		return fmt.Errorf("reading filesystem capacity: %w", err)
	}
	s.opts.Capacity = total
	if err := s.opts.Validate(); err != nil {
		return err
	}

	source := recordOutput
	if source == "" {
		source = stats.Root
	}
	r, err := s.analyze(ctx, source, buf.Bytes(), cfg.Format == "tree")
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg.Format, "")
	if err != nil {
		return err
	}
	return writeResult(status, formatter, r)
}

// writeRecordStats prints a one-line summary of a recording, plus the
// filesystem's capacity when it is available.
func writeRecordStats(w io.Writer, stats recorder.Stats) {
	fmt.Fprintf(w, "Recorded %s: %d dirs, %d files, %s in %d lines",
		stats.Root, stats.Dirs, stats.Files, types.FormatSize(stats.TotalSize), stats.Lines)
	if stats.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", stats.Skipped)
	}
	fmt.Fprintln(w)

	total, available, err := recorder.Capacity(stats.Root)
	switch {
	case err == nil:
		fmt.Fprintf(w, "Filesystem: %s total, %s available\n", types.FormatSize(total), types.FormatSize(available))
	case !errors.Is(err, recorder.ErrCapacityUnsupported):
		printVerbose("Filesystem capacity unavailable: %v", err)
	}
}
