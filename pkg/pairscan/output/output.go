// Package output provides formatters for displaying pairscan results
// in various output formats (pretty, plain, json, yaml, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// PairInfo describes one archive/preview match for output formatting.
type PairInfo struct {
	// Archive is the absolute path to the archive file.
	Archive string `json:"archive" yaml:"archive"`

	// Preview is the absolute path to the matched preview file.
	Preview string `json:"preview" yaml:"preview"`

	// Base is the normalized base name shared by the pair.
	Base string `json:"base" yaml:"base"`

	// Dir is the directory containing the archive.
	Dir string `json:"dir" yaml:"dir"`
}

// ScanStats contains statistics about a scan operation.
type ScanStats struct {
	// DirsWalked is the total number of directories traversed.
	DirsWalked int64 `json:"dirs_walked" yaml:"dirs_walked"`

	// FilesSeen is the total number of files examined.
	FilesSeen int64 `json:"files_seen" yaml:"files_seen"`

	// Duration is the total time taken to complete the scan.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report contains the complete output data for formatting.
// It is the formatter-facing view of a scan result plus metadata about
// how the result was produced.
type Report struct {
	// Pairs contains every archive/preview match.
	Pairs []PairInfo `json:"pairs" yaml:"pairs"`

	// UnpairedArchives contains archive paths with no matching preview.
	UnpairedArchives []string `json:"unpaired_archives" yaml:"unpaired_archives"`

	// UnpairedPreviews contains preview paths with no matching archive.
	UnpairedPreviews []string `json:"unpaired_previews" yaml:"unpaired_previews"`

	// SpecialFolders lists subdirectories that directly contain
	// pairing-relevant files.
	SpecialFolders []string `json:"special_folders,omitempty" yaml:"special_folders,omitempty"`

	// Stats contains scan statistics.
	Stats ScanStats `json:"stats" yaml:"stats"`

	// Source is the root path that was scanned.
	Source string `json:"source" yaml:"source"`

	// Strategy is the pairing strategy that produced the pairs.
	Strategy string `json:"strategy" yaml:"strategy"`

	// Depth is the maximum scan depth (-1 for unbounded).
	Depth int `json:"depth" yaml:"depth"`

	// ScanID identifies the scan run that produced this report.
	ScanID string `json:"scan_id,omitempty" yaml:"scan_id,omitempty"`

	// FromCache indicates the result came from the in-memory cache.
	FromCache bool `json:"from_cache" yaml:"from_cache"`

	// FromStore indicates the result came from the persistent store.
	FromStore bool `json:"from_store" yaml:"from_store"`

	// Warnings contains any warning messages generated during the scan.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Cancelled indicates the scan was interrupted and the report holds
	// partial results.
	Cancelled bool `json:"cancelled" yaml:"cancelled"`
}

// TotalPairs returns the number of pairs in the report.
func (r *Report) TotalPairs() int {
	return len(r.Pairs)
}

// TotalUnpaired returns the number of files left without a partner.
func (r *Report) TotalUnpaired() int {
	return len(r.UnpairedArchives) + len(r.UnpairedPreviews)
}

// BuildReport converts a scan result into the formatter-facing view.
// Per-directory walk failures become warnings; provenance fields
// (ScanID, FromCache, Cancelled) are left for the caller to fill in.
func BuildReport(result *types.ScanResult, source, strategy string, depth int) *Report {
	r := &Report{
		Pairs:            make([]PairInfo, len(result.Pairs)),
		UnpairedArchives: result.Unpaired.Archives,
		UnpairedPreviews: result.Unpaired.Previews,
		SpecialFolders:   result.SpecialFolders,
		Stats: ScanStats{
			DirsWalked: result.DirsWalked,
			FilesSeen:  result.FilesSeen,
			Duration:   result.Elapsed,
		},
		Source:   source,
		Strategy: strategy,
		Depth:    depth,
	}

	for i, p := range result.Pairs {
		r.Pairs[i] = PairInfo{
			Archive: p.ArchivePath,
			Preview: p.PreviewPath,
			Base:    p.BaseName,
			Dir:     filepath.Dir(p.ArchivePath),
		}
	}

	for _, e := range result.Errors {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", e.Path, e.Error))
	}

	return r
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
