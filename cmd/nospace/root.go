package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// v and cfg are populated by loadConfig before any command runs.
	v   *viper.Viper
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "nospace [transcript]",
		Short: "Find the directory to delete from a shell transcript",
		Long: `Nospace rebuilds a directory tree from a terminal transcript of cd and ls
commands, computes the size of every directory, and answers two questions:
how much space the small directories take up, and which single directory to
delete to free enough space.

The transcript is read from the given file, or from stdin when the argument
is "-" or omitted.

Examples:
  nospace input.txt                  # Analyze a transcript
  nospace -f json input.txt          # JSON output
  cat input.txt | nospace -f plain   # Read from stdin
  nospace --watch input.txt          # Re-analyze whenever the file changes
  nospace tree input.txt             # Draw the reconstructed tree
  nospace browse input.txt           # Browse the tree interactively
  nospace record ~/src > src.txt     # Record a transcript of a real directory`,
		Args:               cobra.MaximumNArgs(1),
		PersistentPreRunE:  loadConfig,
		PersistentPostRunE: closeLogging,
		RunE:               runAnalyze,
	}
)

// flagKeys maps viper keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"small_limit": "small-limit",
	"capacity":    "capacity",
	"required":    "required",
	"format":      "format",
	"quiet":       "quiet",
	"verbose":     "verbose",
	"no_cache":    "no-cache",
	"no_history":  "no-history",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/nospace/config.yaml)")
	flags.String("small-limit", "", "inclusive size limit for small directories (e.g., 100000, 100K)")
	flags.String("capacity", "", "total disk capacity (e.g., 70000000, 70M)")
	flags.String("required", "", "free space required (e.g., 30000000, 30M)")
	flags.StringP("format", "f", "", "output format (pretty, plain, json, yaml, tree, template)")
	flags.BoolP("quiet", "q", false, "minimal output")
	flags.BoolP("verbose", "v", false, "debug output")
	flags.Bool("no-cache", false, "bypass the analysis cache")
	flags.Bool("no-history", false, "do not record this run in the history")
}

// bindFlags binds the flags present in fs to their viper keys.
func bindFlags(vp *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := vp.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig reads the config file, environment and flags, then starts
// logging. It runs as the root PersistentPreRunE.
func loadConfig(cmd *cobra.Command, _ []string) error {
	vp, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(vp, cmd.Flags()); err != nil {
		return err
	}

	loaded, err := config.FromViper(vp)
	if err != nil {
		return err
	}
	v, cfg = vp, loaded

	return initializeLogging(false)
}

// closeLogging flushes the log file after a command finishes.
func closeLogging(_ *cobra.Command, _ []string) error {
	return logging.Close()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return v != nil && v.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return v != nil && v.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
