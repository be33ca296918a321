package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jamesainslie/nospace/pkg/nospace/cache"
	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
	Long: `Commands for managing the analysis cache.

The cache stores analysis results keyed by transcript content and analysis
options, so an unchanged transcript is answered without rebuilding its tree.
Cache data is stored in the XDG cache directory (typically ~/.cache/nospace/cache).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [transcript]",
	Short: "Clear cached results",
	Long:  `Removes all cached results, or only those for the given transcript's current content.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// runCacheClear removes all entries, or those of one transcript.
func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		return err
	}
	defer c.Close()

	if len(args) == 0 {
		removed, err := c.ClearAll()
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		printInfo("Cache cleared (%d entries).", removed)
		return nil
	}

	source, digest, err := transcriptDigest(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	removed, err := c.Clear(digest)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	printInfo("Cleared %d entries for %s.", removed, source)
	return nil
}

// transcriptDigest hashes the named transcript, or stdin for "-", without
// parsing it.
func transcriptDigest(arg string, stdin io.Reader) (source, digest string, err error) {
	if arg == stdinSource {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		digest, err = cache.Digest(bytes.NewReader(data))
		return stdinSource, digest, err
	}

	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", "", fmt.Errorf("failed to expand path: %w", err)
	}
	digest, err = cache.DigestFile(path)
	if err != nil {
		return "", "", fmt.Errorf("hashing transcript: %w", err)
	}
	return path, digest, nil
}

// runCacheStats shows the cache location and entry count.
func runCacheStats(cmd *cobra.Command, _ []string) error {
	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.Len()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache location: %s\n", cfg.CachePath())
	fmt.Fprintf(out, "Cache enabled:  %t\n", cfg.Cache.Enabled)
	fmt.Fprintf(out, "Cache entries:  %d\n", n)
	return nil
}
