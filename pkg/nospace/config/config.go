package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the analysis cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Empty means DefaultCachePath()
}

// HistoryConfig configures the analysis history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"` // Empty means DefaultHistoryPath()
	RetentionDays int    `mapstructure:"retention_days"`
}

// WatchConfig configures transcript watching.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config represents the application configuration.
type Config struct {
	SmallLimit string        `mapstructure:"small_limit"`
	Capacity   string        `mapstructure:"capacity"`
	Required   string        `mapstructure:"required"`
	Format     string        `mapstructure:"format"`
	Cache      CacheConfig   `mapstructure:"cache"`
	History    HistoryConfig `mapstructure:"history"`
	Watch      WatchConfig   `mapstructure:"watch"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// AnalyzeOptions parses the configured sizes into analysis options.
func (c *Config) AnalyzeOptions() (analyze.Options, error) {
	var opts analyze.Options
	var err error

	if opts.SmallLimit, err = types.ParseSize(c.SmallLimit); err != nil {
		return opts, fmt.Errorf("invalid small_limit %q: %w", c.SmallLimit, err)
	}
	if opts.Capacity, err = types.ParseSize(c.Capacity); err != nil {
		return opts, fmt.Errorf("invalid capacity %q: %w", c.Capacity, err)
	}
	if opts.Required, err = types.ParseSize(c.Required); err != nil {
		return opts, fmt.Errorf("invalid required %q: %w", c.Required, err)
	}
	return opts, opts.Validate()
}

// CachePath returns the configured cache path or the default.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return DefaultCachePath()
}

// HistoryPath returns the configured history path or the default.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath()
}

// NewViper returns a viper instance with defaults, environment binding and,
// if present, the config file loaded. cfgFile overrides the search path.
// Environment variables are prefixed with NOSPACE_ (e.g. NOSPACE_CAPACITY).
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("NOSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("small_limit", DefaultSmallLimit)
	v.SetDefault("capacity", DefaultCapacity)
	v.SetDefault("required", DefaultRequired)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("watch.debounce", DefaultDebounce)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"builder": "info",
		"cache":   "warn",
		"watcher": "info",
		"tui":     "info",
	})
}

// FromViper decodes a loaded viper instance into a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.Cache.Path, err = ExpandPath(cfg.Cache.Path); err != nil {
		return nil, err
	}
	if cfg.History.Path, err = ExpandPath(cfg.History.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from the default file location and environment.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/nospace/config.yaml
//   - $HOME/.config/nospace/config.yaml
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or the default location when
// path is empty.
func LoadFile(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a default config file to path, or to ConfigPath()
// when path is empty. It returns the path written and does nothing if a
// file already exists there.
func WriteDefault(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return "", false, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# nospace configuration

# Directories at most this size count as small (bytes or 100K, 30M, 1G)
small_limit: %s

# Total disk capacity and the free space required
capacity: %s
required: %s

# Output format: pretty, plain, json, yaml, tree, template
format: %s

# Analysis cache keyed by transcript content
cache:
  enabled: true
  # Empty means $XDG_CACHE_HOME/nospace/cache
  path: ""

# History of past analyses
history:
  enabled: true
  # Empty means $XDG_DATA_HOME/nospace/history
  path: ""
  retention_days: %d

# Transcript watching (analyze --watch)
watch:
  debounce: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/nospace/nospace.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
  # Per-component log levels
  components:
    builder: info
    cache: warn
    watcher: info
    tui: info
`, DefaultSmallLimit, DefaultCapacity, DefaultRequired, DefaultFormat, DefaultRetentionDays, DefaultDebounce)

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/nospace/ for history.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/nospace/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// CacheDir returns $XDG_CACHE_HOME/nospace/.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// DefaultCachePath returns the default badger directory.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "cache")
}

// DefaultHistoryPath returns the default history directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}
