// Package tuner provides resource detection and memory-aware default
// calculation for pairscan. It detects system RAM and CPU cores, then
// derives cache and walk budgets sized to the machine.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available (free) RAM in bytes.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}
