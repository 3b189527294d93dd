// Package scan orchestrates a full scan: cache lookup, directory
// walk, pairing, and cache population. The Coordinator front-ends the
// two cache tiers, the in-memory LRU and the persistent store, and is
// the single entry point the CLI and the watcher talk to.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pairscan/pairscan/pkg/pairscan/classify"
	"github.com/pairscan/pairscan/pkg/pairscan/logging"
	"github.com/pairscan/pairscan/pkg/pairscan/pairing"
	"github.com/pairscan/pairscan/pkg/pairscan/scancache"
	"github.com/pairscan/pairscan/pkg/pairscan/store"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
	"github.com/pairscan/pairscan/pkg/pairscan/walker"
)

var logger = logging.Get("scan")

// Options configures a Coordinator.
type Options struct {
	// Cache is the in-memory result cache. Nil creates one with
	// defaults.
	Cache *scancache.Cache

	// Store is the persistent result store. Nil disables persistence.
	Store *store.Store

	// Classifier assigns pairing categories. Nil uses the default
	// extension sets.
	Classifier *classify.Classifier

	// VisitedCap and HygieneInterval pass through to the walker.
	// Zero values select the walker defaults.
	VisitedCap      int
	HygieneInterval int
}

// Request describes one scan.
type Request struct {
	// Dir is the directory to scan.
	Dir string

	// Depth limits descent below Dir; 0 scans Dir alone and any
	// negative value means unbounded.
	Depth int

	// Strategy selects the pairing algorithm. Empty selects the
	// default; an unrecognized name warns and falls back.
	Strategy pairing.Strategy

	// BaseDir, when set, merges every scanned directory at or below
	// it into one pairing working set.
	BaseDir string

	// NoCache bypasses both cache tiers for reads and writes.
	NoCache bool

	// Refresh ignores cached results but stores the fresh one.
	Refresh bool

	// Interrupt is polled at directory boundaries; returning true
	// stops the walk, preserving partial results.
	Interrupt func() bool

	// OnProgress receives a snapshot after each directory.
	OnProgress func(types.ScanProgress)
}

// Outcome is a scan result plus provenance.
type Outcome struct {
	Result    *types.ScanResult
	FromCache bool
	FromStore bool
	ScanID    string
}

// Coordinator runs scans through the cache tiers.
type Coordinator struct {
	opts       Options
	cache      *scancache.Cache
	store      *store.Store
	classifier *classify.Classifier
	engine     *pairing.Engine
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	cache := opts.Cache
	if cache == nil {
		cache = scancache.New(scancache.DefaultOptions())
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(nil, nil)
	}

	return &Coordinator{
		opts:       opts,
		cache:      cache,
		store:      opts.Store,
		classifier: classifier,
		engine:     pairing.NewEngine(),
	}
}

// Scan resolves a request: cached result when fresh, otherwise walk,
// pair, and populate the caches.
//
// A missing root fails with types.ErrNotFound. A cancelled walk
// returns the partial result alongside types.ErrCancelled, and the
// partial result is never cached.
func (c *Coordinator) Scan(ctx context.Context, req Request) (*Outcome, error) {
	if req.Dir == "" {
		return nil, fmt.Errorf("%w: no directory given", types.ErrNotFound)
	}

	dir := req.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	depth := req.Depth
	if depth < 0 {
		depth = walker.UnboundedDepth
	}

	outcome := &Outcome{ScanID: uuid.NewString()}
	log := logger.With("scan_id", outcome.ScanID)

	useCache := !req.NoCache
	if useCache && !req.Refresh {
		if result, ok := c.cache.Get(dir, depth); ok {
			log.Debug("memory cache hit", "dir", dir, "depth", depth)
			outcome.Result = result
			outcome.FromCache = true
			return outcome, nil
		}
	}

	// The root's mtime decides persistent freshness. A missing root is
	// fatal before any store or walk work begins.
	var rootMod time.Time
	if info, err := os.Stat(dir); err == nil {
		rootMod = info.ModTime()
	} else if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, dir)
	}

	if useCache && !req.Refresh && c.store != nil {
		result, err := c.store.LoadResult(dir, depth, rootMod)
		switch {
		case err == nil:
			log.Debug("persistent store hit", "dir", dir, "depth", depth)
			c.cache.Put(dir, depth, result)
			outcome.Result = result
			outcome.FromStore = true
			return outcome, nil
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("store read failed, rescanning", "dir", dir, "error", err)
		}
	}

	start := time.Now()
	w := walker.New(walker.Options{
		MaxDepth:        depth,
		Interrupt:       interruptFor(ctx, req.Interrupt),
		OnProgress:      req.OnProgress,
		Classifier:      c.classifier,
		VisitedCap:      c.opts.VisitedCap,
		HygieneInterval: c.opts.HygieneInterval,
	})

	fileMap, walkErr := w.Walk(dir)
	if walkErr != nil && !errors.Is(walkErr, types.ErrCancelled) {
		return nil, walkErr
	}

	pairs, unpaired := c.engine.Pair(fileMap, req.BaseDir, req.Strategy)

	outcome.Result = &types.ScanResult{
		Pairs:          pairs,
		Unpaired:       unpaired,
		SpecialFolders: specialFolders(fileMap, dir),
		DirsWalked:     w.DirsWalked(),
		FilesSeen:      w.FilesSeen(),
		Elapsed:        time.Since(start),
		Errors:         w.Errors(),
	}

	if walkErr != nil {
		log.Info("scan cancelled", "dir", dir,
			"dirs", outcome.Result.DirsWalked, "files", outcome.Result.FilesSeen)
		return outcome, walkErr
	}

	if useCache {
		c.cache.Put(dir, depth, outcome.Result)
		if c.store != nil {
			if err := c.store.SaveResult(dir, depth, rootMod, outcome.Result); err != nil {
				log.Warn("persisting result failed", "dir", dir, "error", err)
			}
		}
	}

	log.Info("scan complete", "dir", dir, "pairs", len(pairs),
		"files", outcome.Result.FilesSeen, "elapsed", outcome.Result.Elapsed)
	return outcome, nil
}

// Invalidate drops cached results for dir at every depth, in both
// tiers. It returns the number of entries removed.
func (c *Coordinator) Invalidate(dir string) int {
	removed := c.cache.Invalidate(dir)
	if c.store != nil {
		n, err := c.store.DeleteDir(dir)
		if err != nil {
			logger.Warn("store invalidation failed", "dir", dir, "error", err)
		}
		removed += n
	}
	return removed
}

// InvalidateTree drops cached results for dir, its descendants, and
// its ancestors, in both tiers. It returns the number of entries
// removed.
func (c *Coordinator) InvalidateTree(dir string) int {
	removed := c.cache.InvalidateTree(dir)
	if c.store != nil {
		n, err := c.store.DeleteTree(dir)
		if err != nil {
			logger.Warn("store tree invalidation failed", "dir", dir, "error", err)
		}
		removed += n
	}
	return removed
}

// ClearCaches empties both cache tiers.
func (c *Coordinator) ClearCaches() error {
	c.cache.Clear()
	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}

// CacheStats returns the in-memory cache counters.
func (c *Coordinator) CacheStats() scancache.Stats {
	return c.cache.Stats()
}

// StoreStats returns persistent store statistics, or zero stats when
// persistence is disabled.
func (c *Coordinator) StoreStats() (store.Stats, error) {
	if c.store == nil {
		return store.Stats{}, nil
	}
	return c.store.Stats()
}

// interruptFor folds context cancellation and the caller's interrupt
// into the single predicate the walker polls.
func interruptFor(ctx context.Context, extra func() bool) func() bool {
	return func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
		}
		return extra != nil && extra()
	}
}

// specialFolders lists subdirectories of root that directly contain at
// least one classified file, sorted for stable output.
func specialFolders(fileMap *types.DirectoryFileMap, root string) []string {
	var folders []string
	for _, dir := range fileMap.Dirs() {
		if dir == root {
			continue
		}
		if len(fileMap.Files(dir)) > 0 {
			folders = append(folders, dir)
		}
	}
	sort.Strings(folders)
	return folders
}
