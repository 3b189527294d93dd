package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/classify"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// CacheConfig configures the two result cache tiers.
type CacheConfig struct {
	Capacity  int           `mapstructure:"capacity"`
	TTL       time.Duration `mapstructure:"ttl"`
	Persist   bool          `mapstructure:"persist"`
	MaxMemory string        `mapstructure:"max_memory"`
}

// MaxMemoryBytes parses the MaxMemory size string.
func (c CacheConfig) MaxMemoryBytes() (int64, error) {
	return types.ParseSize(c.MaxMemory)
}

// WalkConfig configures the directory walker.
type WalkConfig struct {
	VisitedCap      int `mapstructure:"visited_cap"`
	HygieneInterval int `mapstructure:"hygiene_interval"`
}

// HistoryConfig configures scan history recording.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	ArchiveExts []string      `mapstructure:"archive_exts"`
	PreviewExts []string      `mapstructure:"preview_exts"`
	Strategy    string        `mapstructure:"strategy"`
	MaxDepth    int           `mapstructure:"max_depth"`
	DefaultPath string        `mapstructure:"default_path"`
	Cache       CacheConfig   `mapstructure:"cache"`
	Walk        WalkConfig    `mapstructure:"walk"`
	History     HistoryConfig `mapstructure:"history"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/pairscan/config.yaml
//   - $HOME/.config/pairscan/config.yaml
//
// Environment variables are prefixed with PAIRSCAN_
// (e.g., PAIRSCAN_STRATEGY, PAIRSCAN_CACHE_TTL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "pairscan"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "pairscan"))

	v.SetEnvPrefix("PAIRSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("archive_exts", classify.DefaultArchiveExtensions)
	v.SetDefault("preview_exts", classify.DefaultPreviewExtensions)
	v.SetDefault("strategy", DefaultStrategy)
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("default_path", DefaultScanPath)

	v.SetDefault("cache.capacity", DefaultCacheCapacity)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.persist", true)
	v.SetDefault("cache.max_memory", DefaultCacheMaxMemory)

	v.SetDefault("walk.visited_cap", DefaultVisitedCap)
	v.SetDefault("walk.hygiene_interval", DefaultHygieneInterval)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // Empty means use DefaultHistoryDir
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"walker":    "info",
		"pairing":   "info",
		"scan":      "info",
		"scancache": "warn",
		"store":     "warn",
		"watcher":   "warn",
	})

	// A missing config file is fine; defaults apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.History.Path, "~") {
		cfg.History.Path = filepath.Join(homeDir, cfg.History.Path[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "pairscan"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "pairscan"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DataDir returns $XDG_DATA_HOME/pairscan/ for scan history.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "pairscan")
}

// StateDir returns $XDG_STATE_HOME/pairscan/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "pairscan")
}

// CacheDir returns $XDG_CACHE_HOME/pairscan/ for the result store.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "pairscan")
}

// DefaultStorePath returns the default persistent result store path.
func DefaultStorePath() string {
	return filepath.Join(CacheDir(), "results")
}

// DefaultHistoryDir returns the default scan history directory.
func DefaultHistoryDir() string {
	return filepath.Join(DataDir(), "history")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "pairscan.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Pairscan Configuration

# Extensions classified as archives
archive_exts:
  - .zip
  - .rar
  - .7z
  - .cbz
  - .cbr
  - .tar
  - .gz

# Extensions classified as previews
preview_exts:
  - .jpg
  - .jpeg
  - .png
  - .gif
  - .webp
  - .bmp

# Pairing strategy: firstmatch, allcombinations, bestmatch
strategy: %s

# Depth limit for scans; -1 means unbounded
max_depth: %d

# Directory scanned when none is specified
default_path: %s

# Result cache settings
cache:
  capacity: %d
  ttl: %s
  # Persist results across runs in $XDG_CACHE_HOME/pairscan/results
  persist: true
  max_memory: %s

# Walker settings
walk:
  # Symlink cycle guard size; beyond it protection rests on max_depth
  visited_cap: %d
  # Release staging buffers every N files
  hygiene_interval: %d

# Scan history settings
history:
  enabled: true
  # History directory (empty means use default: $XDG_DATA_HOME/pairscan/history)
  path: ""
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/pairscan/pairscan.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    walker: info
    pairing: info
    scan: info
    scancache: warn
    store: warn
    watcher: warn
`, DefaultStrategy, DefaultMaxDepth, DefaultScanPath,
		DefaultCacheCapacity, DefaultCacheTTL, DefaultCacheMaxMemory,
		DefaultVisitedCap, DefaultHygieneInterval, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
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
