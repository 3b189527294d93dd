// Package pairing matches archive files to their preview files.
// Three interchangeable strategies are provided: first-match (default),
// all-combinations, and a trie-accelerated best-match. A strategy is a
// pure function of its working set; running one twice over the same
// input yields identical pairs.
package pairing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pairscan/pairscan/pkg/pairscan/logging"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// Strategy names a pairing algorithm.
type Strategy string

const (
	// StrategyFirstMatch pairs the earliest unconsumed archive and
	// preview sharing a base name, in discovery order.
	StrategyFirstMatch Strategy = "firstmatch"

	// StrategyAllCombinations emits a pair for every archive/preview
	// combination sharing a base name.
	StrategyAllCombinations Strategy = "allcombinations"

	// StrategyBestMatch pairs each archive with the closest preview
	// base name via a prefix trie.
	StrategyBestMatch Strategy = "bestmatch"
)

// DefaultStrategy is used when no strategy, or an unrecognized one, is
// requested.
const DefaultStrategy = StrategyFirstMatch

// Strategies returns the recognized strategy names.
func Strategies() []string {
	return []string{
		string(StrategyFirstMatch),
		string(StrategyAllCombinations),
		string(StrategyBestMatch),
	}
}

// ParseStrategy resolves a strategy name case-insensitively, ignoring
// separators ("best-match" and "best_match" both resolve). An empty
// name selects the default silently. An unrecognized name selects the
// default and reports types.ErrUnknownStrategy so the caller can warn.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch normalized {
	case "":
		return DefaultStrategy, nil
	case string(StrategyFirstMatch):
		return StrategyFirstMatch, nil
	case string(StrategyAllCombinations):
		return StrategyAllCombinations, nil
	case string(StrategyBestMatch):
		return StrategyBestMatch, nil
	default:
		return DefaultStrategy, fmt.Errorf("%w: %q", types.ErrUnknownStrategy, name)
	}
}

// matchFunc runs one strategy over a single working set. It returns
// the pairs plus leftover archive and preview paths, all in
// deterministic order.
type matchFunc func(entries []types.FileEntry) ([]types.FilePair, []string, []string)

// logger is the package-level logger for pairing operations.
var logger = logging.Get("pairing")

// Engine applies a pairing strategy to the output of a walk.
type Engine struct{}

// NewEngine creates a pairing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Pair partitions the classified files of fileMap into pairs and
// unpaired leftovers.
//
// With an empty baseDir every directory is paired on its own. A
// non-empty baseDir merges the entries of every directory at or below
// it into one working set, so an archive may match a preview held in a
// sibling subdirectory.
//
// An unrecognized strategy logs a warning and falls back to the
// default; it never fails the call. An empty map yields empty outputs.
func (e *Engine) Pair(fileMap *types.DirectoryFileMap, baseDir string, strategy Strategy) ([]types.FilePair, types.UnpairedSet) {
	if fileMap == nil || fileMap.Len() == 0 {
		return nil, types.UnpairedSet{}
	}

	match := e.matcherFor(strategy)

	var pairs []types.FilePair
	var unpaired types.UnpairedSet
	for _, g := range groupEntries(fileMap, baseDir) {
		gp, archives, previews := match(g.entries)
		pairs = append(pairs, gp...)
		unpaired.Archives = append(unpaired.Archives, archives...)
		unpaired.Previews = append(unpaired.Previews, previews...)
	}
	return pairs, unpaired
}

// matcherFor resolves the strategy, warning once per call on an
// unrecognized name.
func (e *Engine) matcherFor(strategy Strategy) matchFunc {
	resolved, err := ParseStrategy(string(strategy))
	if err != nil {
		logger.Warn("unrecognized pairing strategy, using default",
			"strategy", string(strategy), "default", string(DefaultStrategy))
	}

	switch resolved {
	case StrategyAllCombinations:
		return allCombinations
	case StrategyBestMatch:
		return bestMatch
	default:
		return firstMatch
	}
}

// group is one pairing working set.
type group struct {
	key     string
	entries []types.FileEntry
}

// groupEntries builds the working sets: one per non-empty directory,
// or a single merged set for directories under baseDir.
func groupEntries(fileMap *types.DirectoryFileMap, baseDir string) []group {
	if baseDir != "" {
		baseDir = filepath.Clean(baseDir)
	}

	var groups []group
	index := make(map[string]int)

	for _, dir := range fileMap.Dirs() {
		entries := fileMap.Files(dir)
		if len(entries) == 0 {
			continue
		}

		key := dir
		if baseDir != "" && underBase(dir, baseDir) {
			key = baseDir
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].entries = append(groups[i].entries, entries...)
	}
	return groups
}

// underBase reports whether dir is base or lies below it.
func underBase(dir, base string) bool {
	if dir == base {
		return true
	}
	return strings.HasPrefix(dir, base+string(filepath.Separator))
}

// collectUnpaired partitions leftover classified entries in discovery
// order. Other-category entries never appear.
func collectUnpaired(entries []types.FileEntry, consumed []bool) (archives, previews []string) {
	for i, fe := range entries {
		if consumed[i] {
			continue
		}
		switch fe.Category {
		case types.CategoryArchive:
			archives = append(archives, fe.Path)
		case types.CategoryPreview:
			previews = append(previews, fe.Path)
		}
	}
	return archives, previews
}
