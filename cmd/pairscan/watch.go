package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/pairing"
	"github.com/pairscan/pairscan/pkg/pairscan/scan"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
	"github.com/pairscan/pairscan/pkg/pairscan/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and re-scan on changes",
	Long: `Watch a directory tree and keep its pairing results fresh.

Filesystem events invalidate cached results for the affected subtree;
the directory is then re-scanned and a summary printed. New
subdirectories are picked up automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

// watchRescanInterval batches bursts of events into one re-scan.
const watchRescanInterval = 2 * time.Second

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(_ *cobra.Command, args []string) error {
	dir, err := resolveScanTarget(args)
	if err != nil {
		return err
	}

	strategyName := viper.GetString("strategy")
	strategy, err := pairing.ParseStrategy(strategyName)
	if err != nil {
		return fmt.Errorf("invalid strategy %q: valid strategies are %v", strategyName, pairing.Strategies())
	}

	coord, cleanup, err := buildCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := watcher.New()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	w.SetWorkers(tunedConfig().WatchWorkers)

	if err := w.Watch(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printInfo("Watching %s (Ctrl-C to stop)", dir)
	if err := watchScan(ctx, coord, dir, strategy); err != nil {
		return err
	}

	// Any event invalidates the containing directory's subtree. The
	// re-scan itself is batched below.
	var dirty atomic.Bool
	onChange := func(path string, op fsnotify.Op) {
		removed := coord.InvalidateTree(filepath.Dir(path))
		printVerbose("%s %s: invalidated %d cached results", op, path, removed)
		dirty.Store(true)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, onChange)
	}()

	ticker := time.NewTicker(watchRescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			printInfo("Watch stopped.")
			return nil
		case <-ticker.C:
			if !dirty.Swap(false) {
				continue
			}
			if err := watchScan(ctx, coord, dir, strategy); err != nil {
				return err
			}
		}
	}
}

// watchScan runs one scan and prints a summary line.
func watchScan(ctx context.Context, coord *scan.Coordinator, dir string, strategy pairing.Strategy) error {
	outcome, err := coord.Scan(ctx, scan.Request{
		Dir:      dir,
		Depth:    viper.GetInt("max_depth"),
		Strategy: strategy,
		BaseDir:  viper.GetString("base_dir"),
	})
	if errors.Is(err, types.ErrCancelled) {
		return nil
	}
	if err != nil {
		printError("scan failed: %v", err)
		return nil
	}

	result := outcome.Result
	source := "scanned"
	if outcome.FromCache || outcome.FromStore {
		source = "cached"
	}
	printInfo("%s  %d pairs, %d unpaired, %s files (%s, %s)",
		time.Now().Format("15:04:05"),
		len(result.Pairs),
		len(result.Unpaired.Archives)+len(result.Unpaired.Previews),
		types.FormatCount(result.FilesSeen),
		result.Elapsed.Round(time.Millisecond),
		source)
	return nil
}
