package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage pairscan configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/pairscan/config.yaml (if set)
  2. ~/.config/pairscan/config.yaml

Environment variables can override config file settings using the PAIRSCAN_ prefix:
  PAIRSCAN_STRATEGY=bestmatch
  PAIRSCAN_MAX_DEPTH=3
  PAIRSCAN_CACHE_TTL=10m`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
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
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("archive_exts:          %v\n", cfg.ArchiveExts)
	fmt.Printf("preview_exts:          %v\n", cfg.PreviewExts)
	fmt.Printf("strategy:              %s\n", cfg.Strategy)
	fmt.Printf("max_depth:             %d\n", cfg.MaxDepth)
	fmt.Printf("default_path:          %s\n", cfg.DefaultPath)
	fmt.Printf("cache.capacity:        %d\n", cfg.Cache.Capacity)
	fmt.Printf("cache.ttl:             %s\n", cfg.Cache.TTL)
	fmt.Printf("cache.persist:         %t\n", cfg.Cache.Persist)
	fmt.Printf("cache.max_memory:      %s\n", cfg.Cache.MaxMemory)
	fmt.Printf("walk.visited_cap:      %d\n", cfg.Walk.VisitedCap)
	fmt.Printf("walk.hygiene_interval: %d\n", cfg.Walk.HygieneInterval)
	fmt.Printf("history.enabled:       %t\n", cfg.History.Enabled)
	fmt.Printf("history.path:          %s\n", historyPathOrDefault(cfg))
	fmt.Printf("history.retention:     %d days\n", cfg.History.RetentionDays)
	fmt.Printf("logging.level:         %s\n", cfg.Logging.Level)

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"PAIRSCAN_STRATEGY",
		"PAIRSCAN_MAX_DEPTH",
		"PAIRSCAN_DEFAULT_PATH",
		"PAIRSCAN_CACHE_CAPACITY",
		"PAIRSCAN_CACHE_TTL",
		"PAIRSCAN_CACHE_PERSIST",
		"PAIRSCAN_CACHE_MAX_MEMORY",
		"PAIRSCAN_WALK_VISITED_CAP",
		"PAIRSCAN_WALK_HYGIENE_INTERVAL",
		"PAIRSCAN_HISTORY_ENABLED",
		"PAIRSCAN_HISTORY_RETENTION_DAYS",
		"PAIRSCAN_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// historyPathOrDefault resolves the effective history directory.
func historyPathOrDefault(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return config.DefaultHistoryDir()
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	// Ensure config file exists
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	// Determine editor
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
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'pairscan config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
