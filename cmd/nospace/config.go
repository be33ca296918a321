package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage nospace configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/nospace/config.yaml (if set)
  2. ~/.config/nospace/config.yaml

Environment variables can override config file settings using the NOSPACE_ prefix:
  NOSPACE_CAPACITY=70M
  NOSPACE_REQUIRED=30M
  NOSPACE_CACHE_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration merged from defaults, file, environment and flags.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the effective configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	return writeConfig(cmd.OutOrStdout(), v)
}

// writeConfig prints the config file in use, the effective settings as
// YAML, and any NOSPACE_ environment overrides.
func writeConfig(w io.Writer, vp *viper.Viper) error {
	if configFile := vp.ConfigFileUsed(); configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fmt.Fprintf(w, "Config file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(w, "Config file: %s (not found, using defaults)\n\n", configFile)
		}
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	settings := vp.AllSettings()
	for _, key := range []string{"quiet", "verbose", "no_cache", "no_history"} {
		delete(settings, key)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	if _, err := w.Write(data); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "NOSPACE_") {
			overrides = append(overrides, kv)
		}
	}
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}
	slices.Sort(overrides)
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, _, err := config.WriteDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, created, err := config.WriteDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if !created {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'nospace config edit' to modify it.")
		return nil
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		var err error
		if configPath, err = config.ConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
