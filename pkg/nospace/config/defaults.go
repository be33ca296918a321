// Package config provides configuration management for nospace.
package config

import "time"

// Default configuration values for nospace.
const (
	// DefaultSmallLimit is the inclusive size bound for small directories.
	DefaultSmallLimit = "100000"

	// DefaultCapacity is the total disk capacity.
	DefaultCapacity = "70000000"

	// DefaultRequired is the free space an update needs.
	DefaultRequired = "30000000"

	// DefaultFormat is the output format used when none is given.
	DefaultFormat = "pretty"

	// DefaultRetentionDays is the default number of days to keep history.
	DefaultRetentionDays = 30

	// DefaultDebounce is how long the watcher waits for writes to settle.
	DefaultDebounce = 250 * time.Millisecond

	// appName names the XDG subdirectories and the config directory.
	appName = "nospace"
)
