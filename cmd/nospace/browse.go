package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jamesainslie/nospace/cmd/nospace/tui"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/watcher"
	"github.com/spf13/cobra"
)

var browseLive bool

var browseCmd = &cobra.Command{
	Use:   "browse <transcript>",
	Short: "Browse the reconstructed tree interactively",
	Long: `Open an interactive browser over the tree rebuilt from a transcript.

Small directories and the directory to delete are highlighted. Press c to
jump to the directory to delete and ? for all key bindings. With --live the
tree is rebuilt whenever the transcript changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVarP(&browseLive, "live", "l", false, "rebuild the tree when the transcript changes")
	rootCmd.AddCommand(browseCmd)
}

// runBrowse starts the TUI.
func runBrowse(cmd *cobra.Command, args []string) error {
	if args[0] == stdinSource {
		return fmt.Errorf("browse needs a transcript file, not stdin")
	}

	// The TUI owns the terminal, so log to the file only.
	if err := initializeLogging(true); err != nil {
		return fmt.Errorf("failed to initialize TUI logging: %w", err)
	}

	s, err := sessionFromFlags()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := tui.Options{
		Source: args[0],
		Load: func(ctx context.Context) (*analyze.Result, error) {
			return s.analyzeArgs(ctx, args, bytes.NewReader(nil), true)
		},
	}

	if browseLive {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		changes, err := watchChanges(ctx, args[0])
		if err != nil {
			return err
		}
		opts.Changes = changes
	}

	return tui.Run(opts)
}

// watchChanges delivers the watched transcript's path on every change until
// ctx ends, then closes the channel.
func watchChanges(ctx context.Context, path string) (<-chan string, error) {
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	w, err := watcher.New(cfg.Watch.Debounce)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	changes := make(chan string, 1)
	go func() {
		defer close(changes)
		defer w.Close()
		w.Run(ctx, func(changed string) {
			select {
			case changes <- changed:
			default:
				// A reload is already pending.
			}
		})
	}()
	return changes, nil
}
