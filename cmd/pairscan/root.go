package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/classify"
	"github.com/pairscan/pairscan/pkg/pairscan/config"
	"github.com/pairscan/pairscan/pkg/pairscan/logging"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pairscan [dir]",
		Short: "Pair archive files with their preview images",
		Long: `Pairscan walks a directory tree and matches archive files (zip, rar, 7z)
with preview images (jpg, png, webp) that share the same base name.

Results are cached in memory and on disk, so repeat scans of unchanged
directories return instantly.

Examples:
  pairscan                        # Scan current directory
  pairscan ~/models               # Scan a specific directory
  pairscan -d 2 ~/models          # Limit descent to two levels
  pairscan -s bestmatch ~/models  # Tolerate suffix noise in base names
  pairscan -o json ~/models       # Machine-readable output
  pairscan watch ~/models         # Re-scan as the tree changes
  pairscan history                # View past scans`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return initLogging() },
		RunE:              runScan,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/pairscan/config.yaml)")
	rootCmd.PersistentFlags().IntP("depth", "d", config.DefaultMaxDepth, "directory depth limit (-1 for unbounded, 0 for the root alone)")
	rootCmd.PersistentFlags().StringP("strategy", "s", "", "pairing strategy: firstmatch, allcombinations, bestmatch")
	rootCmd.PersistentFlags().StringP("base-dir", "b", "", "merge results for directories at or below this path")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass both cache tiers, never reuse or record results")
	rootCmd.PersistentFlags().Bool("refresh", false, "ignore cached results but store the fresh scan")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (default: pretty)")
	rootCmd.PersistentFlags().String("template", "", "Go template for -o template")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	// Bind flags to viper
	_ = viper.BindPFlag("max_depth", rootCmd.PersistentFlags().Lookup("depth"))
	_ = viper.BindPFlag("strategy", rootCmd.PersistentFlags().Lookup("strategy"))
	_ = viper.BindPFlag("base_dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("refresh", rootCmd.PersistentFlags().Lookup("refresh"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("template", rootCmd.PersistentFlags().Lookup("template"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "pairscan"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "pairscan"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("PAIRSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("archive_exts", classify.DefaultArchiveExtensions)
	viper.SetDefault("preview_exts", classify.DefaultPreviewExtensions)
	viper.SetDefault("strategy", config.DefaultStrategy)
	viper.SetDefault("max_depth", config.DefaultMaxDepth)
	viper.SetDefault("default_path", config.DefaultScanPath)
	viper.SetDefault("cache.capacity", config.DefaultCacheCapacity)
	viper.SetDefault("cache.ttl", config.DefaultCacheTTL)
	viper.SetDefault("cache.persist", true)
	viper.SetDefault("cache.max_memory", config.DefaultCacheMaxMemory)
	viper.SetDefault("walk.visited_cap", config.DefaultVisitedCap)
	viper.SetDefault("walk.hygiene_interval", config.DefaultHygieneInterval)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.retention_days", config.DefaultRetentionDays)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.rotation.max_size", "10MB")
	viper.SetDefault("logging.rotation.max_age", 30)
	viper.SetDefault("logging.rotation.max_backups", 5)
	viper.SetDefault("logging.rotation.daily", true)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging configures the shared log file from merged settings.
// Verbose mirrors debug logs to stderr; quiet silences the console.
func initLogging() error {
	consoleLevel := "warn"
	if getVerbose() {
		consoleLevel = "debug"
	}
	if getQuiet() {
		consoleLevel = ""
	}

	rotation := logging.DefaultRotationConfig()
	if maxSize, err := types.ParseSize(viper.GetString("logging.rotation.max_size")); err == nil {
		rotation.MaxSize = maxSize
	}
	rotation.MaxAge = viper.GetInt("logging.rotation.max_age")
	rotation.MaxBackups = viper.GetInt("logging.rotation.max_backups")
	rotation.Daily = viper.GetBool("logging.rotation.daily")

	return logging.Init(logging.Config{
		Level:        viper.GetString("logging.level"),
		Path:         viper.GetString("logging.path"),
		Rotation:     rotation,
		Components:   viper.GetStringMapString("logging.components"),
		ConsoleLevel: consoleLevel,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
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
