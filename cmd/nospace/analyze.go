package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/output"
	"github.com/jamesainslie/nospace/pkg/nospace/watcher"
	"github.com/spf13/cobra"
)

var (
	watchMode   bool
	templateStr string
)

func init() {
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-analyze whenever the transcript file changes")
	rootCmd.Flags().StringVarP(&templateStr, "template", "t", "", "Go template for output (implies --format template)")
}

// runAnalyze is the root command handler.
func runAnalyze(cmd *cobra.Command, args []string) error {
	if watchMode && (len(args) == 0 || args[0] == stdinSource) {
		return fmt.Errorf("--watch needs a transcript file, not stdin")
	}

	format := cfg.Format
	if templateStr != "" {
		format = "template"
	}
	formatter, err := newFormatter(format, templateStr)
	if err != nil {
		return err
	}

	s, err := sessionFromFlags()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	run := func() error {
		r, err := s.analyzeArgs(ctx, args, cmd.InOrStdin(), format == "tree")
		if err != nil {
			return err
		}
		return writeResult(out, formatter, r)
	}

	if err := run(); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}
	return watchTranscript(ctx, args[0], run)
}

// newFormatter resolves a format name. A non-empty template overrides the
// template formatter's default.
func newFormatter(format, tmpl string) (output.Formatter, error) {
	if format == "template" && tmpl != "" {
		return output.NewTemplateFormatter(tmpl), nil
	}
	f, err := output.Get(format)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}
	return f, nil
}

// writeResult formats r and writes it to w.
func writeResult(w io.Writer, f output.Formatter, r *analyze.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// watchTranscript calls run after every change to path until ctx ends.
// Failed runs are reported and watching continues.
func watchTranscript(ctx context.Context, path string, run func() error) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	w, err := watcher.New(cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	printVerbose("Watching %s (debounce %v)", path, cfg.Watch.Debounce)
	w.Run(ctx, func(changed string) {
		logger.Info("transcript changed", "path", changed)
		if err := run(); err != nil {
			printError("%v", err)
		}
	})
	return nil
}
