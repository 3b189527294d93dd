// Package config provides configuration management for pairscan.
package config

// Default configuration values.
const (
	// DefaultStrategy is the pairing strategy used when none is
	// configured.
	DefaultStrategy = "firstmatch"

	// DefaultMaxDepth is the depth limit for scans; -1 is unbounded.
	DefaultMaxDepth = -1

	// DefaultScanPath is scanned when no directory is given.
	DefaultScanPath = "."

	// DefaultCacheCapacity is the in-memory cache entry limit.
	DefaultCacheCapacity = 128

	// DefaultCacheTTL is how long a cached result stays fresh.
	DefaultCacheTTL = "5m"

	// DefaultCacheMaxMemory bounds the in-memory cache size.
	DefaultCacheMaxMemory = "100MB"

	// DefaultVisitedCap bounds the walker's symlink cycle guard.
	DefaultVisitedCap = 50000

	// DefaultHygieneInterval is the walker's buffer release period, in
	// files.
	DefaultHygieneInterval = 1000

	// DefaultRetentionDays is how long scan history entries are kept.
	DefaultRetentionDays = 30
)
