// Package scancache keeps recent scan results in memory. Entries are
// keyed by canonical (directory, depth), evicted least-recently-used
// beyond a capacity and a memory budget, and expire lazily after a
// TTL. All methods are safe for concurrent use.
package scancache

import (
	"container/list"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pairscan/pairscan/pkg/pairscan/logging"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// Defaults applied by Options.Validate.
const (
	DefaultCapacity  = 128
	DefaultTTL       = 5 * time.Minute
	DefaultMaxMemory = 100 * 1024 * 1024
)

var logger = logging.Get("scancache")

// Key identifies one cached scan: a canonical directory plus the
// depth limit the scan ran with. The same directory scanned at two
// depths occupies two slots.
type Key struct {
	Dir   string
	Depth int
}

// NormalizeKey canonicalizes dir and depth so equivalent requests
// share a slot. Relative paths become absolute, symlinks resolve, and
// case folds on case-insensitive platforms. Any negative depth means
// unbounded and normalizes to -1.
func NormalizeKey(dir string, depth int) Key {
	canonical := dir
	if abs, err := filepath.Abs(canonical); err == nil {
		canonical = abs
	} else {
		canonical = filepath.Clean(canonical)
	}
	canonical = resolvePath(canonical)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		canonical = strings.ToLower(canonical)
	}

	if depth < 0 {
		depth = -1
	}
	return Key{Dir: canonical, Depth: depth}
}

// resolvePath resolves symlinks in path. When path no longer exists,
// as happens when invalidating a deleted directory, the deepest
// existing ancestor is resolved and the remainder rejoined so the key
// still matches entries stored while the directory was alive.
func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolvePath(parent), filepath.Base(path))
}

// Options configures a Cache.
type Options struct {
	// Capacity is the maximum number of entries. Zero or negative
	// uses DefaultCapacity.
	Capacity int

	// TTL is how long an entry stays fresh. Zero or negative uses
	// DefaultTTL.
	TTL time.Duration

	// MaxMemory bounds the estimated bytes held by cached results.
	// Zero or negative uses DefaultMaxMemory.
	MaxMemory int64
}

// DefaultOptions returns options with all defaults applied.
func DefaultOptions() Options {
	return Options{
		Capacity:  DefaultCapacity,
		TTL:       DefaultTTL,
		MaxMemory: DefaultMaxMemory,
	}
}

// Validate normalizes zero and negative fields to their defaults.
func (o *Options) Validate() {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxMemory <= 0 {
		o.MaxMemory = DefaultMaxMemory
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries     int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	MemoryBytes int64
}

// entry is one cached scan. Results are shared pointers; callers must
// treat them as read-only.
type entry struct {
	key      Key
	result   *types.ScanResult
	storedAt time.Time
	size     int64
}

// Cache is an LRU scan-result cache with TTL expiry and a memory
// budget.
type Cache struct {
	mu    sync.Mutex
	opts  Options
	ll    *list.List // front is most recently used
	items map[Key]*list.Element

	memory      int64
	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	now func() time.Time
}

// New creates a cache. The zero Options value selects all defaults.
func New(opts Options) *Cache {
	opts.Validate()
	return &Cache{
		opts:  opts,
		ll:    list.New(),
		items: make(map[Key]*list.Element),
		now:   time.Now,
	}
}

// Get returns the cached result for (dir, depth), or nil and false on
// a miss. Expired entries are removed on access. A corrupt entry is
// removed and reported as a miss so the caller rescans.
func (c *Cache) Get(dir string, depth int) (*types.ScanResult, bool) {
	key := NormalizeKey(dir, depth)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := el.Value.(*entry)
	if c.now().Sub(ent.storedAt) > c.opts.TTL {
		c.removeElement(el)
		c.expirations++
		c.misses++
		return nil, false
	}
	if corrupt(ent.result) {
		logger.Warn("dropping corrupt cache entry", "dir", key.Dir, "depth", key.Depth)
		c.removeElement(el)
		c.misses++
		return nil, false
	}

	c.ll.MoveToFront(el)
	c.hits++
	return ent.result, true
}

// Put stores result under (dir, depth), replacing any existing entry
// for the same key. Nil results are ignored. Insertion may evict
// least-recently-used entries to honor the capacity and memory
// budgets.
func (c *Cache) Put(dir string, depth int, result *types.ScanResult) {
	if result == nil {
		return
	}
	key := NormalizeKey(dir, depth)
	size := estimateSize(key, result)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		c.memory += size - ent.size
		ent.result = result
		ent.storedAt = c.now()
		ent.size = size
		c.ll.MoveToFront(el)
		c.enforceBudgets()
		return
	}

	el := c.ll.PushFront(&entry{
		key:      key,
		result:   result,
		storedAt: c.now(),
		size:     size,
	})
	c.items[key] = el
	c.memory += size
	c.enforceBudgets()
}

// Invalidate removes every entry for dir, at any depth. It returns the
// number of entries removed.
func (c *Cache) Invalidate(dir string) int {
	target := NormalizeKey(dir, 0).Dir

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.removeMatching(func(k Key) bool {
		return k.Dir == target
	})
}

// InvalidateTree removes entries for dir, for directories below it,
// and for ancestors whose scans may have included it. It returns the
// number of entries removed.
func (c *Cache) InvalidateTree(dir string) int {
	base := NormalizeKey(dir, 0).Dir

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.removeMatching(func(k Key) bool {
		return withinTree(k.Dir, base) || withinTree(base, k.Dir)
	})
}

// Clear removes every entry. Counters survive.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[Key]*list.Element)
	c.memory = 0
}

// Sweep removes all expired entries now instead of waiting for access.
// It returns the number removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		ent := el.Value.(*entry)
		if now.Sub(ent.storedAt) > c.opts.TTL {
			c.removeElement(el)
			c.expirations++
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of live entries, including any not yet
// noticed as expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// MemoryUsage returns the estimated bytes held by cached results.
func (c *Cache) MemoryUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:     c.ll.Len(),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		MemoryBytes: c.memory,
	}
}

// enforceBudgets evicts from the least-recently-used end until both
// the capacity and memory budgets hold. Callers hold c.mu.
func (c *Cache) enforceBudgets() {
	for c.ll.Len() > c.opts.Capacity {
		c.evictOldest()
	}
	for c.memory > c.opts.MaxMemory && c.ll.Len() > 0 {
		c.evictOldest()
	}
}

func (c *Cache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.removeElement(el)
	c.evictions++
}

// removeElement unlinks an entry. Callers hold c.mu.
func (c *Cache) removeElement(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
	c.memory -= ent.size
}

// removeMatching removes entries whose key satisfies match. Callers
// hold c.mu.
func (c *Cache) removeMatching(match func(Key) bool) int {
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if match(el.Value.(*entry).key) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// withinTree reports whether dir is base or lies below it.
func withinTree(dir, base string) bool {
	if dir == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(dir, prefix)
}

// corrupt reports whether a cached result violates basic result
// invariants. Such entries are dropped rather than served.
func corrupt(r *types.ScanResult) bool {
	if r == nil {
		return true
	}
	if r.FilesSeen < 0 || r.DirsWalked < 0 {
		return true
	}
	for _, p := range r.Pairs {
		if p.ArchivePath == "" || p.PreviewPath == "" {
			return true
		}
	}
	return false
}

// Rough per-item overheads for the memory estimate. Paths dominate
// real usage; the constants cover struct and header costs.
const (
	entryOverhead  = 256
	pairOverhead   = 96
	stringOverhead = 48
	errorOverhead  = 64
)

// estimateSize approximates the resident cost of one cached result.
func estimateSize(key Key, r *types.ScanResult) int64 {
	size := int64(entryOverhead + len(key.Dir))

	for _, p := range r.Pairs {
		size += pairOverhead + int64(len(p.ArchivePath)+len(p.PreviewPath)+len(p.BaseName))
	}
	for _, s := range r.Unpaired.Archives {
		size += stringOverhead + int64(len(s))
	}
	for _, s := range r.Unpaired.Previews {
		size += stringOverhead + int64(len(s))
	}
	for _, s := range r.SpecialFolders {
		size += stringOverhead + int64(len(s))
	}
	for _, e := range r.Errors {
		size += errorOverhead + int64(len(e.Path)+len(e.Error))
	}
	return size
}
