// Package classify maps file paths to pairing categories using
// extension set lookups, and derives the normalized base names that
// the pairing strategies match on.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// DefaultArchiveExtensions are the archive formats recognized when no
// configuration overrides them.
var DefaultArchiveExtensions = []string{
	".zip", ".rar", ".7z", ".cbz", ".cbr", ".tar", ".gz",
}

// DefaultPreviewExtensions are the preview image formats recognized
// when no configuration overrides them.
var DefaultPreviewExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp",
}

// DefaultPairingSuffixes are the filename suffixes stripped during base
// name normalization. Longer variants come first so they win over
// their shorter prefixes.
var DefaultPairingSuffixes = []string{
	"_thumbnail", "-thumbnail",
	"_preview", "-preview",
	"_thumb", "-thumb",
	"_cover", "-cover",
}

// Classifier decides the pairing role of a file from its extension.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	archives map[string]bool
	previews map[string]bool
	suffixes []string
}

// New creates a classifier for the given extension sets. Extensions
// are matched case-insensitively; a missing leading dot is tolerated.
// Empty slices fall back to the package defaults.
func New(archiveExts, previewExts []string) *Classifier {
	if len(archiveExts) == 0 {
		archiveExts = DefaultArchiveExtensions
	}
	if len(previewExts) == 0 {
		previewExts = DefaultPreviewExtensions
	}

	return &Classifier{
		archives: buildSet(archiveExts),
		previews: buildSet(previewExts),
		suffixes: DefaultPairingSuffixes,
	}
}

// buildSet normalizes extensions into a lookup map.
func buildSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// Classify returns the pairing category for a path.
func (c *Classifier) Classify(path string) types.Category {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case c.archives[ext]:
		return types.CategoryArchive
	case c.previews[ext]:
		return types.CategoryPreview
	default:
		return types.CategoryOther
	}
}

// Entry builds the FileEntry for a path, deriving its category and
// normalized base name.
func (c *Classifier) Entry(path string) types.FileEntry {
	return types.FileEntry{
		Path:     path,
		Category: c.Classify(path),
		BaseName: c.BaseName(path),
	}
}

// BaseName returns the normalized matching stem for a path: the file
// name with its extension removed, lowercased, and a single known
// pairing suffix stripped. A name consisting solely of a suffix keeps
// its stem so it still matches something.
func (c *Classifier) BaseName(path string) string {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.ToLower(stem)

	for _, suffix := range c.suffixes {
		if strings.HasSuffix(stem, suffix) {
			if trimmed := strings.TrimSuffix(stem, suffix); trimmed != "" {
				return trimmed
			}
			break
		}
	}
	return stem
}

// NormalizeBaseName normalizes a file name using the default pairing
// suffixes. Callers holding a Classifier should prefer its BaseName
// method so configured sets stay in one place.
func NormalizeBaseName(name string) string {
	return defaultClassifier.BaseName(name)
}

var defaultClassifier = New(nil, nil)
