package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pairscan/pairscan/pkg/pairscan/classify"
	"github.com/pairscan/pairscan/pkg/pairscan/config"
	"github.com/pairscan/pairscan/pkg/pairscan/manifest"
	"github.com/pairscan/pairscan/pkg/pairscan/output"
	"github.com/pairscan/pairscan/pkg/pairscan/pairing"
	"github.com/pairscan/pairscan/pkg/pairscan/scan"
	"github.com/pairscan/pairscan/pkg/pairscan/scancache"
	"github.com/pairscan/pairscan/pkg/pairscan/store"
	"github.com/pairscan/pairscan/pkg/pairscan/tuner"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// runScan is the main scan command handler.
func runScan(_ *cobra.Command, args []string) error {
	dir, err := resolveScanTarget(args)
	if err != nil {
		return err
	}

	strategyName := viper.GetString("strategy")
	strategy, err := pairing.ParseStrategy(strategyName)
	if err != nil {
		return fmt.Errorf("invalid strategy %q: valid strategies are %v", strategyName, pairing.Strategies())
	}

	depth := viper.GetInt("max_depth")

	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	coord, cleanup, err := buildCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping scan...")
		cancel()
	}()

	progress := newProgressPrinter()

	outcome, err := coord.Scan(ctx, scan.Request{
		Dir:        dir,
		Depth:      depth,
		Strategy:   strategy,
		BaseDir:    viper.GetString("base_dir"),
		NoCache:    viper.GetBool("no_cache"),
		Refresh:    viper.GetBool("refresh"),
		OnProgress: progress.update,
	})
	progress.finish()

	cancelled := errors.Is(err, types.ErrCancelled)
	if err != nil && !cancelled {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := output.BuildReport(outcome.Result, dir, string(strategy), depth)
	report.ScanID = outcome.ScanID
	report.FromCache = outcome.FromCache
	report.FromStore = outcome.FromStore
	report.Cancelled = cancelled
	if progress.degraded() {
		report.Warnings = append(report.Warnings,
			"symlink cycle guard reached capacity; loop protection fell back to the depth limit")
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	recordHistory(outcome, report, dir, string(strategy), depth)
	return nil
}

// resolveScanTarget picks the directory to scan and verifies it.
func resolveScanTarget(args []string) (string, error) {
	target := viper.GetString("default_path")
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		target = "."
	}

	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory does not exist: %s", abs)
		}
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}

	return abs, nil
}

// resolveFormatter picks the output formatter for the current flags.
func resolveFormatter() (output.Formatter, error) {
	name := viper.GetString("output")
	if name == "" {
		name = "pretty"
	}

	if name == "template" {
		tmplStr := viper.GetString("template")
		if tmplStr == "" {
			return nil, fmt.Errorf("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(tmplStr), nil
	}

	formatter, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return formatter, nil
}

// tunedConfig detects system resources and derives suggested knobs.
func tunedConfig() tuner.OptimalConfig {
	resources, err := tuner.Detect()
	if err != nil {
		printVerbose("Failed to detect system resources, using defaults: %v", err)
		resources = tuner.SystemResources{
			CPUCores:     4,
			TotalRAM:     8 * types.GiB,
			AvailableRAM: 4 * types.GiB,
		}
	}

	printVerbose("System: %d CPUs, %s RAM, %s available",
		resources.CPUCores,
		types.FormatSize(resources.TotalRAM),
		types.FormatSize(resources.AvailableRAM))

	if capacity := viper.GetInt("cache.capacity"); capacity != config.DefaultCacheCapacity {
		return tuner.CalculateWithOverrides(resources, capacity)
	}
	return tuner.Calculate(resources)
}

// settingOrTuned prefers an explicit setting over the tuner's
// suggestion. A value still at its shipped default counts as unset.
func settingOrTuned(key string, shipped, tuned int) int {
	if v := viper.GetInt(key); v != shipped {
		return v
	}
	return tuned
}

// buildCoordinator assembles the scan pipeline from merged settings.
// The returned cleanup closes the persistent store if one was opened.
func buildCoordinator() (*scan.Coordinator, func(), error) {
	tuned := tunedConfig()

	maxMemory := tuned.CacheMemory
	if sizeStr := viper.GetString("cache.max_memory"); sizeStr != config.DefaultCacheMaxMemory {
		parsed, err := types.ParseSize(sizeStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cache.max_memory %q: %w", sizeStr, err)
		}
		maxMemory = parsed
	}

	cache := scancache.New(scancache.Options{
		Capacity:  tuned.CacheCapacity,
		TTL:       viper.GetDuration("cache.ttl"),
		MaxMemory: maxMemory,
	})

	cleanup := func() {}
	var st *store.Store
	if viper.GetBool("cache.persist") && !viper.GetBool("no_cache") {
		if err := config.EnsureCacheDir(); err != nil {
			printVerbose("Cache directory unavailable, scans will not persist: %v", err)
		} else if opened, err := store.Open(config.DefaultStorePath()); err != nil {
			printVerbose("Persistent store unavailable, scans will not persist: %v", err)
		} else {
			st = opened
			cleanup = func() { _ = opened.Close() }
		}
	}

	classifier := classify.New(
		viper.GetStringSlice("archive_exts"),
		viper.GetStringSlice("preview_exts"))

	coord := scan.New(scan.Options{
		Cache:           cache,
		Store:           st,
		Classifier:      classifier,
		VisitedCap:      settingOrTuned("walk.visited_cap", config.DefaultVisitedCap, tuned.VisitedCap),
		HygieneInterval: settingOrTuned("walk.hygiene_interval", config.DefaultHygieneInterval, tuned.HygieneInterval),
	})
	return coord, cleanup, nil
}

// recordHistory appends a manifest entry for a finished scan, best
// effort. Failures are reported only in verbose mode.
func recordHistory(outcome *scan.Outcome, report *output.Report, dir, strategy string, depth int) {
	if !viper.GetBool("history.enabled") || viper.GetBool("no_cache") {
		return
	}

	m, err := getManifest()
	if err != nil {
		printVerbose("History unavailable: %v", err)
		return
	}

	_, err = m.Append(manifest.Entry{
		ID:         outcome.ScanID,
		Dir:        dir,
		Depth:      depth,
		Strategy:   strategy,
		Pairs:      report.TotalPairs(),
		Unpaired:   report.TotalUnpaired(),
		FilesSeen:  int(outcome.Result.FilesSeen),
		DirsWalked: int(outcome.Result.DirsWalked),
		Duration:   outcome.Result.Elapsed,
		Cancelled:  report.Cancelled,
		FromCache:  outcome.FromCache || outcome.FromStore,
	})
	if err != nil {
		printVerbose("Failed to record history: %v", err)
	}
}

// progressInterval throttles progress rendering. The walker reports
// after every directory; only the CLI slows that down.
const progressInterval = 100 * time.Millisecond

// progressPrinter renders walker progress as a single rewritten
// stderr line. It stays silent unless stderr is a terminal.
type progressPrinter struct {
	mu       sync.Mutex
	enabled  bool
	rendered bool
	degrade  bool
	last     time.Time
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{enabled: !getQuiet() && stderrIsTerminal()}
}

// update receives every walker progress report and draws at most one
// line per interval.
func (p *progressPrinter) update(prog types.ScanProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prog.CycleGuardDegraded {
		p.degrade = true
	}
	if !p.enabled {
		return
	}

	now := time.Now()
	if now.Sub(p.last) < progressInterval {
		return
	}
	p.last = now
	p.rendered = true

	fmt.Fprintf(os.Stderr, "\r\x1b[K  scanning %s dirs, %s files  %s",
		types.FormatCount(prog.DirsWalked),
		types.FormatCount(prog.FilesSeen),
		shortenPath(prog.CurrentPath, 48))
}

// finish clears the progress line.
func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rendered {
		fmt.Fprint(os.Stderr, "\r\x1b[K")
	}
}

// degraded reports whether any progress update carried the one-time
// cycle guard notification.
func (p *progressPrinter) degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degrade
}

// shortenPath trims the middle of long paths for one-line rendering.
func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	keep := (maxLen - 3) / 2
	return path[:keep] + "..." + path[len(path)-keep:]
}

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
