package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pairscan/pairscan/pkg/pairscan/config"
	"github.com/pairscan/pairscan/pkg/pairscan/store"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent result cache",
	Long: `Commands for managing the persistent scan result cache.

Completed scans are stored on disk so repeat scans of unchanged
directories return instantly. Results live in the XDG cache directory
(typically ~/.cache/pairscan/results).`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, stored result count, and on-disk size.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		storePath := config.DefaultStorePath()

		if _, err := os.Stat(storePath); os.IsNotExist(err) {
			fmt.Println("Cache: empty (no stored results)")
			fmt.Printf("Cache location: %s\n", storePath)
			return nil
		}

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer s.Close()

		stats, err := s.Stats()
		if err != nil {
			return fmt.Errorf("failed to read store statistics: %w", err)
		}

		fmt.Printf("Cache location: %s\n", storePath)
		fmt.Printf("Stored results: %d\n", stats.Entries)
		fmt.Printf("Index size:     %s\n", types.FormatSize(stats.LSMBytes))
		fmt.Printf("Log size:       %s\n", types.FormatSize(stats.VLogBytes))

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached results",
	Long:  `Removes every stored scan result. The next scan of any directory performs a full walk.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		storePath := config.DefaultStorePath()

		if _, err := os.Stat(storePath); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(storePath); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale cached results",
	Long: `Removes stored results whose directory no longer exists or has
changed since the scan. Fresh results are kept.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		storePath := config.DefaultStorePath()

		if _, err := os.Stat(storePath); os.IsNotExist(err) {
			fmt.Println("Cache is empty, nothing to sweep.")
			return nil
		}

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer s.Close()

		removed, err := s.Sweep()
		if err != nil {
			return fmt.Errorf("failed to sweep cache: %w", err)
		}

		if removed == 0 {
			fmt.Println("No stale results found.")
		} else {
			fmt.Printf("Removed %d stale results.\n", removed)
		}
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path of the persistent result cache.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(config.DefaultStorePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
