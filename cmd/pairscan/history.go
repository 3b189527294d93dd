package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/config"
	"github.com/pairscan/pairscan/pkg/pairscan/manifest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View scan history",
	Long: `View the history of completed scans.

Every scan records an entry with its directory, strategy, pair counts,
and duration. Entries live under $XDG_DATA_HOME/pairscan/history.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific scan",
	Long:  `Display detailed information about a specific scan by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest rooted at the configured directory.
func getManifest() (*manifest.Manifest, error) {
	dir := viper.GetString("history.path")
	if dir == "" {
		dir = config.DefaultHistoryDir()
	}
	return manifest.New(dir)
}

// runHistory lists recent scans.
func runHistory(_ *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'pairscan [dir]' to scan a directory.")
		return nil
	}

	fmt.Printf("\n%-8s  %-16s  %-6s  %-8s  %-10s  %s\n",
		"ID", "TIME", "PAIRS", "UNPAIRED", "STRATEGY", "DIR")
	fmt.Println(strings.Repeat("-", 80))

	for _, entry := range entries {
		flags := ""
		if entry.Cancelled {
			flags = " (cancelled)"
		} else if entry.FromCache {
			flags = " (cached)"
		}
		fmt.Printf("%-8s  %-16s  %-6d  %-8d  %-10s  %s%s\n",
			shortID(entry.ID),
			entry.Timestamp.Local().Format("2006-01-02 15:04"),
			entry.Pairs,
			entry.Unpaired,
			entry.Strategy,
			entry.Dir,
			flags,
		)
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'pairscan history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific scan.
func runHistoryShow(_ *cobra.Command, args []string) error {
	id := args[0]

	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	entry, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nScan Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Directory:  %s\n", entry.Dir)
	fmt.Printf("Depth:      %s\n", formatEntryDepth(entry.Depth))
	fmt.Printf("Strategy:   %s\n", entry.Strategy)
	fmt.Printf("Pairs:      %d\n", entry.Pairs)
	fmt.Printf("Unpaired:   %d\n", entry.Unpaired)
	fmt.Printf("Files seen: %d\n", entry.FilesSeen)
	fmt.Printf("Dirs:       %d\n", entry.DirsWalked)
	fmt.Printf("Duration:   %s\n", entry.Duration)
	if entry.Cancelled {
		fmt.Println("Cancelled:  yes (partial results)")
	}
	if entry.FromCache {
		fmt.Println("Served from cache")
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	retentionDays := viper.GetInt("history.retention_days")
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	if err := m.Cleanup(retentionDays); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete.")
	return nil
}

// shortID returns the first ID segment, enough to disambiguate.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// formatEntryDepth renders a recorded depth limit.
func formatEntryDepth(depth int) string {
	if depth < 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d", depth)
}
