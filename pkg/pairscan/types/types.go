// Package types provides core data types for the pairscan engine.
// It includes the file classification model, pairing results, scan
// progress reporting, and utility functions for parsing and formatting
// byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Category classifies a file by its role in pairing.
type Category string

const (
	// CategoryArchive marks a file as packaged content to be paired
	// with a preview.
	CategoryArchive Category = "archive"

	// CategoryPreview marks a file as an image representing an archive.
	CategoryPreview Category = "preview"

	// CategoryOther marks a file that takes no part in pairing.
	CategoryOther Category = "other"
)

// FileEntry is one classified file discovered during a walk.
// It is immutable once created; only paths survive into results.
type FileEntry struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Category is the pairing role derived from the file extension.
	Category Category `json:"category"`

	// BaseName is the normalized filename stem used for matching:
	// extension stripped, known pairing suffixes stripped, case-folded.
	BaseName string `json:"base_name"`
}

// DirectoryFileMap maps each visited directory to the ordered list of
// classified files found directly within it. Directory order is
// discovery order; file order within a directory is discovery order.
type DirectoryFileMap struct {
	dirs  []string
	files map[string][]FileEntry
}

// NewDirectoryFileMap returns an empty map.
func NewDirectoryFileMap() *DirectoryFileMap {
	return &DirectoryFileMap{
		files: make(map[string][]FileEntry),
	}
}

// AddDir registers a directory, preserving discovery order.
// Registering an already-known directory is a no-op.
func (m *DirectoryFileMap) AddDir(dir string) {
	if _, ok := m.files[dir]; ok {
		return
	}
	m.dirs = append(m.dirs, dir)
	m.files[dir] = nil
}

// Add appends a file entry under its directory, registering the
// directory if needed.
func (m *DirectoryFileMap) Add(dir string, entry FileEntry) {
	m.AddDir(dir)
	m.files[dir] = append(m.files[dir], entry)
}

// Dirs returns the visited directories in discovery order.
// The returned slice must not be modified.
func (m *DirectoryFileMap) Dirs() []string {
	return m.dirs
}

// Files returns the entries discovered directly within dir.
// The returned slice must not be modified.
func (m *DirectoryFileMap) Files(dir string) []FileEntry {
	return m.files[dir]
}

// Len returns the number of registered directories.
func (m *DirectoryFileMap) Len() int {
	return len(m.dirs)
}

// TotalFiles returns the number of classified files across all
// directories.
func (m *DirectoryFileMap) TotalFiles() int {
	total := 0
	for _, entries := range m.files {
		total += len(entries)
	}
	return total
}

// Pairable is the capability a pair record must provide to downstream
// consumers (metadata, thumbnails). It replaces ad-hoc structural
// checks with a compile-time contract.
type Pairable interface {
	// Archive returns the archive path of the pair.
	Archive() string

	// Preview returns the preview path, or "" if the pair is one-sided.
	Preview() string

	// Base returns the shared normalized base name.
	Base() string
}

// FilePair is an immutable archive/preview match.
// When both paths are present they refer to distinct files whose base
// names match under the strategy that produced the pair.
type FilePair struct {
	// ArchivePath is the absolute path of the archive file.
	ArchivePath string `json:"archive_path"`

	// PreviewPath is the absolute path of the matched preview file.
	// Empty only for one-sided placeholder pairs, which no shipped
	// strategy produces.
	PreviewPath string `json:"preview_path,omitempty"`

	// BaseName is the normalized base name shared by the pair.
	BaseName string `json:"base_name"`
}

// Archive returns the archive path of the pair.
func (p FilePair) Archive() string { return p.ArchivePath }

// Preview returns the preview path of the pair.
func (p FilePair) Preview() string { return p.PreviewPath }

// Base returns the normalized base name of the pair.
func (p FilePair) Base() string { return p.BaseName }

// Ensure FilePair satisfies Pairable.
var _ Pairable = FilePair{}

// UnpairedSet holds every classified file not consumed into a pair.
// The two slices are disjoint.
type UnpairedSet struct {
	// Archives contains archive paths with no matching preview.
	Archives []string `json:"archives"`

	// Previews contains preview paths with no matching archive.
	Previews []string `json:"previews"`
}

// Empty reports whether the set contains no paths.
func (u UnpairedSet) Empty() bool {
	return len(u.Archives) == 0 && len(u.Previews) == 0
}

// ScanResult is the outcome of one scan and pair cycle.
// A result stored in a cache is shared read-only; callers must not
// mutate it.
type ScanResult struct {
	// Pairs contains every archive/preview match.
	Pairs []FilePair `json:"pairs"`

	// Unpaired contains classified files left without a partner.
	Unpaired UnpairedSet `json:"unpaired"`

	// SpecialFolders lists subdirectories of the scan root that
	// directly contain at least one classified file, sorted.
	SpecialFolders []string `json:"special_folders,omitempty"`

	// DirsWalked is the number of directories traversed.
	DirsWalked int64 `json:"dirs_walked"`

	// FilesSeen is the number of files examined, including files
	// classified as other.
	FilesSeen int64 `json:"files_seen"`

	// Elapsed is the wall time of the walk and pair phases.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains per-directory failures the walk skipped over.
	Errors []WalkError `json:"errors,omitempty"`
}

// PairCount returns the number of pairs in the result.
func (r *ScanResult) PairCount() int {
	return len(r.Pairs)
}

// WalkError records a non-fatal failure at a specific path.
type WalkError struct {
	// Path is the directory where the error occurred.
	Path string `json:"path"`

	// Error is the message describing what went wrong.
	Error string `json:"error"`
}

// ScanProgress is a snapshot of walk state delivered to progress
// callbacks at directory boundaries.
type ScanProgress struct {
	// FilesSeen is the number of files examined so far.
	FilesSeen int64 `json:"files_seen"`

	// DirsWalked is the number of directories processed so far.
	DirsWalked int64 `json:"dirs_walked"`

	// CurrentPath is the directory just processed.
	CurrentPath string `json:"current_path"`

	// CycleGuardDegraded is true on exactly one progress report: the
	// first after the visited set reached capacity and loop protection
	// fell back to the depth limit alone.
	CycleGuardDegraded bool `json:"cycle_guard_degraded,omitempty"`
}

// Sentinel errors for scan outcomes. Callers compare with errors.Is.
var (
	// ErrNotFound indicates the scan root does not exist or vanished
	// mid-walk. Fatal for that call.
	ErrNotFound = errors.New("directory not found")

	// ErrCancelled indicates a cooperative stop. Results collected
	// before the stop are still returned alongside this error.
	ErrCancelled = errors.New("scan cancelled")

	// ErrUnknownStrategy indicates an unrecognized pairing strategy
	// name. Pairing proceeds with the default strategy.
	ErrUnknownStrategy = errors.New("unknown pairing strategy")
)

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports the following formats:
//   - Plain bytes: "1024", "0"
//   - With byte suffix: "512B", "512b"
//   - Kilobytes: "100K", "100k", "100KB", "100KiB"
//   - Megabytes: "50M", "50m", "50MB", "50MiB"
//   - Gigabytes: "2G", "2g", "2GB", "2GiB"
//   - Terabytes: "1T", "1t", "1TB", "1TiB"
//
// Decimal values are supported and truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// FormatCount formats an integer with thousands separators for display.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
