package tuner

// Cache and walk budget limits.
const (
	// minCacheCapacity is the smallest suggested result-cache capacity.
	minCacheCapacity = 64

	// maxCacheCapacity is the largest suggested result-cache capacity.
	// Beyond this, TTL expiry turns over entries before LRU pressure does.
	maxCacheCapacity = 1024

	// minVisitedCap matches the default symlink-guard bound. Suggesting
	// less would degrade loop protection on small machines.
	minVisitedCap = 50_000

	// maxVisitedCap is the largest suggested visited-set bound.
	maxVisitedCap = 500_000

	// minHygieneInterval is the smallest file count between hygiene passes.
	minHygieneInterval = 500

	// maxHygieneInterval is the largest file count between hygiene passes.
	maxHygieneInterval = 10_000

	// minCacheMemory is the smallest suggested cache memory budget (16MB).
	minCacheMemory = 16 * 1024 * 1024

	// maxCacheMemory is the largest suggested cache memory budget (100MB).
	maxCacheMemory = 100 * 1024 * 1024

	// minWatchWorkers is the minimum number of watch registration workers.
	minWatchWorkers = 4

	// maxWatchWorkers caps registration parallelism; watch setup is
	// metadata-only and saturates quickly.
	maxWatchWorkers = 16
)

// Memory-based sizing constants.
const (
	// bytesPerCachedResult estimates memory per cached scan result.
	// A populated directory result is roughly pair slices plus path strings.
	bytesPerCachedResult = 256 * 1024

	// cacheMemoryFraction is the fraction of available RAM to use for the
	// result cache. Small, since scans themselves consume most memory.
	cacheMemoryFraction = 0.01

	// bytesPerVisitedEntry estimates memory per visited-set entry.
	// Each entry is a device/inode key plus map overhead.
	bytesPerVisitedEntry = 128

	// visitedMemoryFraction is the fraction of available RAM to use for
	// the symlink-guard visited set.
	visitedMemoryFraction = 0.005
)

// OptimalConfig contains tuned budgets optimized for the detected
// system resources.
type OptimalConfig struct {
	// CacheCapacity is the suggested result-cache entry capacity.
	CacheCapacity int

	// CacheMemory is the suggested result-cache memory budget in bytes.
	CacheMemory int64

	// VisitedCap is the suggested symlink-guard visited-set bound.
	VisitedCap int

	// HygieneInterval is the suggested file count between walker
	// memory-hygiene passes. Larger machines can afford longer gaps.
	HygieneInterval int

	// WatchWorkers is the suggested parallelism for recursive watch
	// registration.
	WatchWorkers int
}

// Calculate returns tuned budgets based on system resources.
//
// The calculation logic:
//   - CacheCapacity: a small fraction of available RAM divided by the
//     estimated size of a cached result, floored so small machines still
//     get a useful cache
//   - VisitedCap: likewise a fraction of RAM, never below the default
//     guard bound
//   - HygieneInterval: one hygiene pass per MB of available RAM worth of
//     files, bounded so passes stay neither constant nor absent
//   - CacheMemory: 1/16 of available RAM, capped at the 100MB budget
//   - WatchWorkers: max(NumCPU, 4) capped at 16
func Calculate(resources SystemResources) OptimalConfig {
	capacity := int(float64(resources.AvailableRAM) * cacheMemoryFraction / bytesPerCachedResult)
	capacity = max(capacity, minCacheCapacity)
	capacity = min(capacity, maxCacheCapacity)

	visited := int(float64(resources.AvailableRAM) * visitedMemoryFraction / bytesPerVisitedEntry)
	visited = max(visited, minVisitedCap)
	visited = min(visited, maxVisitedCap)

	hygiene := int(resources.AvailableRAM / (1 << 20))
	hygiene = max(hygiene, minHygieneInterval)
	hygiene = min(hygiene, maxHygieneInterval)

	cacheMemory := resources.AvailableRAM / 16
	cacheMemory = max(cacheMemory, minCacheMemory)
	cacheMemory = min(cacheMemory, maxCacheMemory)

	watchWorkers := max(resources.CPUCores, minWatchWorkers)
	watchWorkers = min(watchWorkers, maxWatchWorkers)

	return OptimalConfig{
		CacheCapacity:   capacity,
		CacheMemory:     cacheMemory,
		VisitedCap:      visited,
		HygieneInterval: hygiene,
		WatchWorkers:    watchWorkers,
	}
}

// CalculateWithOverrides applies a user override to the tuned config.
// If capacityOverride is greater than 0, it replaces the suggested cache
// capacity (still respecting the maximum cap). If it is 0 or negative,
// the calculated value is used.
func CalculateWithOverrides(resources SystemResources, capacityOverride int) OptimalConfig {
	config := Calculate(resources)

	if capacityOverride > 0 {
		config.CacheCapacity = min(capacityOverride, maxCacheCapacity)
	}

	return config
}
