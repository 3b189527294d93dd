// Package walker provides the streaming directory traversal for the
// pairscan engine. It enumerates one directory at a time, classifies
// files as it goes, and supports cooperative interruption, depth
// bounds, and a capacity-limited guard against symlink cycles.
package walker

import (
	"github.com/pairscan/pairscan/pkg/pairscan/classify"
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// UnboundedDepth disables the depth limit.
const UnboundedDepth = -1

const (
	// DefaultVisitedCap is the maximum number of canonical directory
	// identities remembered for cycle detection.
	DefaultVisitedCap = 50000

	// DefaultHygieneInterval is the number of files processed between
	// scratch buffer releases.
	DefaultHygieneInterval = 1000
)

// Options configures a walk.
type Options struct {
	// MaxDepth bounds recursion depth from the root. The root itself
	// is depth zero; UnboundedDepth removes the limit.
	MaxDepth int

	// Interrupt is polled at each directory boundary. Returning true
	// stops the walk; everything collected so far is still returned.
	Interrupt func() bool

	// OnProgress is called after each directory is processed. The call
	// is direct and unthrottled; slow callbacks slow the walk.
	OnProgress func(types.ScanProgress)

	// Classifier decides which files are of interest. Nil selects the
	// default extension sets.
	Classifier *classify.Classifier

	// VisitedCap bounds the symlink-cycle guard. Zero or negative
	// selects DefaultVisitedCap.
	VisitedCap int

	// HygieneInterval is the file count between scratch buffer
	// releases. Zero or negative selects DefaultHygieneInterval.
	HygieneInterval int
}

// DefaultOptions returns options with unbounded depth and default
// guard sizes.
func DefaultOptions() Options {
	return Options{
		MaxDepth:        UnboundedDepth,
		VisitedCap:      DefaultVisitedCap,
		HygieneInterval: DefaultHygieneInterval,
	}
}

// Validate normalizes the options in place, applying defaults for
// unset or out-of-range values.
func (o *Options) Validate() error {
	if o.MaxDepth < UnboundedDepth {
		o.MaxDepth = UnboundedDepth
	}
	if o.VisitedCap <= 0 {
		o.VisitedCap = DefaultVisitedCap
	}
	if o.HygieneInterval <= 0 {
		o.HygieneInterval = DefaultHygieneInterval
	}
	if o.Classifier == nil {
		o.Classifier = classify.New(nil, nil)
	}
	return nil
}
