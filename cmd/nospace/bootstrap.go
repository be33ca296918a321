package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// parseRotationConfig converts the configured rotation into the logging
// package's form. An empty or invalid max_size falls back to the default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.DefaultRotationConfig()
	out.MaxAge = rc.MaxAge
	out.MaxBackups = rc.MaxBackups

	if rc.MaxSize != "" {
		if size, err := types.ParseSize(rc.MaxSize); err == nil && size > 0 {
			out.MaxSize = int64(size)
		}
	}
	return out
}

// ensureDirectories creates the XDG directories nospace writes to.
func ensureDirectories() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// initializeLogging starts logging from the loaded configuration. In TUI
// mode nothing is written to the console.
func initializeLogging(tuiMode bool) error {
	if err := ensureDirectories(); err != nil {
		return err
	}

	lc := config.LoggingConfig{Level: "info"}
	if cfg != nil {
		lc = cfg.Logging
	}

	consoleLevel := ""
	if getVerbose() {
		consoleLevel = "debug"
	}

	return logging.Init(logging.Config{
		Level:        lc.Level,
		Path:         lc.Path,
		Rotation:     parseRotationConfig(lc.Rotation),
		Components:   lc.Components,
		ConsoleLevel: consoleLevel,
		TUIMode:      tuiMode,
	})
}
