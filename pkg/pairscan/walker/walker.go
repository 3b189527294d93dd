package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// Walker performs a single streaming traversal. It is single-threaded
// and single-use: create a new Walker for each walk.
type Walker struct {
	opts Options

	filesSeen  int64
	dirsWalked int64

	// errors collects per-directory failures without stopping the walk.
	errors []types.WalkError

	// visited holds canonical directory identities for cycle detection.
	visited map[string]struct{}

	// degraded is set once the visited set reaches capacity.
	// degradedPending carries the one-shot progress notification.
	degraded        bool
	degradedPending bool

	// scratch stages one directory's classified entries. It is reused
	// across directories and released every HygieneInterval files.
	scratch      []types.FileEntry
	sinceHygiene int
}

// frame is one pending directory on the traversal stack.
type frame struct {
	path  string
	depth int
}

// New creates a Walker with the given options. Options are validated
// and defaults applied.
func New(opts Options) *Walker {
	_ = opts.Validate()

	return &Walker{
		opts:    opts,
		visited: make(map[string]struct{}),
	}
}

// Walk traverses root depth-first in name order, producing the map of
// classified files per directory.
//
// Unreadable subdirectories are recorded via Errors and skipped. A
// missing root, or a root that vanishes mid-walk, fails with
// types.ErrNotFound. When the interrupt fires, Walk returns everything
// collected so far alongside types.ErrCancelled.
func (w *Walker) Walk(root string) (*types.DirectoryFileMap, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, absRoot)
		}
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrNotFound, absRoot)
	}

	fileMap := types.NewDirectoryFileMap()
	stack := []frame{{path: absRoot, depth: 0}}

	for len(stack) > 0 {
		if w.opts.Interrupt != nil && w.opts.Interrupt() {
			return fileMap, types.ErrCancelled
		}

		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !w.markVisited(fr.path) {
			continue
		}

		subdirs, err := w.processDir(fr, fileMap)
		if err != nil {
			if fr.path == absRoot && os.IsNotExist(err) {
				return fileMap, fmt.Errorf("%w: %s", types.ErrNotFound, absRoot)
			}
			w.addError(fr.path, err)
			continue
		}

		w.dirsWalked++
		w.emitProgress(fr.path)

		if w.opts.MaxDepth == UnboundedDepth || fr.depth < w.opts.MaxDepth {
			// Reverse push so subdirectories pop in name order.
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, frame{path: subdirs[i], depth: fr.depth + 1})
			}
		}
	}

	return fileMap, nil
}

// processDir enumerates one directory, appending classified files to
// the map and returning subdirectory paths for descent.
func (w *Walker) processDir(fr frame, fileMap *types.DirectoryFileMap) ([]string, error) {
	entries, err := os.ReadDir(fr.path)
	if err != nil {
		return nil, err
	}

	fileMap.AddDir(fr.path)
	w.scratch = w.scratch[:0]

	var subdirs []string
	for _, entry := range entries {
		full := filepath.Join(fr.path, entry.Name())

		isDir, isFile := resolveEntryType(entry, full)
		switch {
		case isDir:
			subdirs = append(subdirs, full)
		case isFile:
			w.filesSeen++
			w.sinceHygiene++
			if fe := w.opts.Classifier.Entry(full); fe.Category != types.CategoryOther {
				w.scratch = append(w.scratch, fe)
			}
		}
	}

	for _, fe := range w.scratch {
		fileMap.Add(fr.path, fe)
	}

	w.maybeReleaseScratch()
	return subdirs, nil
}

// resolveEntryType reports whether a directory entry is a directory or
// a regular file, following symlinks one level. Broken symlinks and
// special files (devices, sockets, pipes) are both false.
func resolveEntryType(entry fs.DirEntry, full string) (isDir, isFile bool) {
	mode := entry.Type()
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(full)
		if err != nil {
			return false, false
		}
		return info.IsDir(), info.Mode().IsRegular()
	}
	return entry.IsDir(), mode.IsRegular()
}

// markVisited records the canonical identity of a directory. It
// returns false when the identity was already seen, which means the
// directory was reached twice through symlinks. Once the set is at
// capacity, new identities are no longer recorded and loop protection
// rests on the depth limit alone.
func (w *Walker) markVisited(dir string) bool {
	id, err := filepath.EvalSymlinks(dir)
	if err != nil {
		id = filepath.Clean(dir)
	}

	if _, seen := w.visited[id]; seen {
		return false
	}

	if len(w.visited) >= w.opts.VisitedCap {
		if !w.degraded {
			w.degraded = true
			w.degradedPending = true
		}
		return true
	}

	w.visited[id] = struct{}{}
	return true
}

// maybeReleaseScratch drops the staging buffer after HygieneInterval
// files so one oversized directory does not pin its backing array for
// the rest of the walk. Called only at directory boundaries, after the
// staged entries have been copied into the map.
func (w *Walker) maybeReleaseScratch() {
	if w.sinceHygiene < w.opts.HygieneInterval {
		return
	}
	w.scratch = nil
	w.sinceHygiene = 0
}

// emitProgress reports the state after a directory boundary. The
// cycle-guard degradation flag is delivered on exactly one report.
func (w *Walker) emitProgress(dir string) {
	if w.opts.OnProgress == nil {
		return
	}

	p := types.ScanProgress{
		FilesSeen:          w.filesSeen,
		DirsWalked:         w.dirsWalked,
		CurrentPath:        dir,
		CycleGuardDegraded: w.degradedPending,
	}
	w.degradedPending = false
	w.opts.OnProgress(p)
}

// addError records a non-fatal failure for a directory.
func (w *Walker) addError(path string, err error) {
	w.errors = append(w.errors, types.WalkError{
		Path:  path,
		Error: err.Error(),
	})
}

// Errors returns the per-directory failures collected during the walk.
func (w *Walker) Errors() []types.WalkError {
	return w.errors
}

// FilesSeen returns the number of files examined, including files
// classified as other.
func (w *Walker) FilesSeen() int64 {
	return w.filesSeen
}

// DirsWalked returns the number of directories processed.
func (w *Walker) DirsWalked() int64 {
	return w.dirsWalked
}

// Degraded reports whether the cycle guard hit its capacity during the
// walk.
func (w *Walker) Degraded() bool {
	return w.degraded
}
