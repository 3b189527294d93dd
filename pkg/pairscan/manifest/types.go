// Package manifest keeps a JSON-per-entry history of completed scans.
package manifest

import "time"

// Entry records a single scan run.
type Entry struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Dir        string        `json:"dir"`
	Depth      int           `json:"depth"`
	Strategy   string        `json:"strategy"`
	Pairs      int           `json:"pairs"`
	Unpaired   int           `json:"unpaired"`
	FilesSeen  int           `json:"files_seen"`
	DirsWalked int           `json:"dirs_walked"`
	Duration   time.Duration `json:"duration_ns"`
	Cancelled  bool          `json:"cancelled,omitempty"`
	FromCache  bool          `json:"from_cache,omitempty"`
}
