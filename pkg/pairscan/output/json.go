package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Pairs    []jsonPair   `json:"pairs"`
	Unpaired jsonUnpaired `json:"unpaired"`
	Stats    jsonStats    `json:"stats"`
	Meta     jsonMeta     `json:"meta"`
}

// jsonPair represents one archive/preview match in JSON output.
type jsonPair struct {
	Archive string `json:"archive"`
	Preview string `json:"preview"`
	Base    string `json:"base"`
	Dir     string `json:"dir,omitempty"`
}

// jsonUnpaired represents files without a partner in JSON output.
type jsonUnpaired struct {
	Archives []string `json:"archives"`
	Previews []string `json:"previews"`
}

// jsonStats represents scan statistics in JSON output.
type jsonStats struct {
	DirsWalked int64  `json:"dirs_walked"`
	FilesSeen  int64  `json:"files_seen"`
	Duration   string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source         string   `json:"source"`
	Strategy       string   `json:"strategy"`
	Depth          int      `json:"depth"`
	ScanID         string   `json:"scan_id,omitempty"`
	FromCache      bool     `json:"from_cache"`
	FromStore      bool     `json:"from_store"`
	TotalPairs     int      `json:"total_pairs"`
	TotalUnpaired  int      `json:"total_unpaired"`
	SpecialFolders []string `json:"special_folders,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	Cancelled      bool     `json:"cancelled"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with pairs, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Report to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Report) jsonOutput {
	pairs := make([]jsonPair, len(r.Pairs))
	for i, pair := range r.Pairs {
		pairs[i] = jsonPair{
			Archive: pair.Archive,
			Preview: pair.Preview,
			Base:    pair.Base,
			Dir:     pair.Dir,
		}
	}

	unpaired := jsonUnpaired{
		Archives: emptyIfNil(r.UnpairedArchives),
		Previews: emptyIfNil(r.UnpairedPreviews),
	}

	stats := jsonStats{
		DirsWalked: r.Stats.DirsWalked,
		FilesSeen:  r.Stats.FilesSeen,
		Duration:   formatDurationString(r.Stats.Duration),
	}

	meta := jsonMeta{
		Source:         r.Source,
		Strategy:       r.Strategy,
		Depth:          r.Depth,
		ScanID:         r.ScanID,
		FromCache:      r.FromCache,
		FromStore:      r.FromStore,
		TotalPairs:     r.TotalPairs(),
		TotalUnpaired:  r.TotalUnpaired(),
		SpecialFolders: r.SpecialFolders,
		Warnings:       r.Warnings,
		Cancelled:      r.Cancelled,
	}

	return jsonOutput{
		Pairs:    pairs,
		Unpaired: unpaired,
		Stats:    stats,
		Meta:     meta,
	}
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one pair per
// line). Each pair is written as a compact JSON object on its own line.
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Report) error {
	for _, pair := range r.Pairs {
		jp := jsonPair{
			Archive: pair.Archive,
			Preview: pair.Preview,
			Base:    pair.Base,
			Dir:     pair.Dir,
		}

		data, err := json.Marshal(jp)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
