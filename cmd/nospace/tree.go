package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/nospace/pkg/nospace/output"
	"github.com/spf13/cobra"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [transcript]",
	Short: "Draw the reconstructed directory tree",
	Long: `Draw the directory tree rebuilt from a transcript, largest entries first.

Directories within the small limit are marked [small] and the directory to
delete is marked [delete].`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "maximum depth to draw (0 = unlimited)")
	rootCmd.AddCommand(treeCmd)
}

// runTree analyzes a transcript and draws its tree.
func runTree(cmd *cobra.Command, args []string) error {
	s, err := sessionFromFlags()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := s.analyzeArgs(ctx, args, cmd.InOrStdin(), true)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), &output.TreeFormatter{MaxDepth: treeDepth}, r)
}
