package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Pairs    []yamlPair   `yaml:"pairs"`
	Unpaired yamlUnpaired `yaml:"unpaired"`
	Stats    yamlStats    `yaml:"stats"`
	Meta     yamlMeta     `yaml:"meta"`
}

// yamlPair represents one archive/preview match in YAML output.
type yamlPair struct {
	Archive string `yaml:"archive"`
	Preview string `yaml:"preview"`
	Base    string `yaml:"base"`
	Dir     string `yaml:"dir,omitempty"`
}

// yamlUnpaired represents files without a partner in YAML output.
type yamlUnpaired struct {
	Archives []string `yaml:"archives"`
	Previews []string `yaml:"previews"`
}

// yamlStats represents scan statistics in YAML output.
type yamlStats struct {
	DirsWalked int64  `yaml:"dirs_walked"`
	FilesSeen  int64  `yaml:"files_seen"`
	Duration   string `yaml:"duration"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Source         string   `yaml:"source"`
	Strategy       string   `yaml:"strategy"`
	Depth          int      `yaml:"depth"`
	ScanID         string   `yaml:"scan_id,omitempty"`
	FromCache      bool     `yaml:"from_cache"`
	FromStore      bool     `yaml:"from_store"`
	TotalPairs     int      `yaml:"total_pairs"`
	TotalUnpaired  int      `yaml:"total_unpaired"`
	SpecialFolders []string `yaml:"special_folders,omitempty"`
	Warnings       []string `yaml:"warnings,omitempty"`
	Cancelled      bool     `yaml:"cancelled"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Report) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Report to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Report) yamlOutput {
	pairs := make([]yamlPair, len(r.Pairs))
	for i, pair := range r.Pairs {
		pairs[i] = yamlPair{
			Archive: pair.Archive,
			Preview: pair.Preview,
			Base:    pair.Base,
			Dir:     pair.Dir,
		}
	}

	unpaired := yamlUnpaired{
		Archives: emptyIfNil(r.UnpairedArchives),
		Previews: emptyIfNil(r.UnpairedPreviews),
	}

	stats := yamlStats{
		DirsWalked: r.Stats.DirsWalked,
		FilesSeen:  r.Stats.FilesSeen,
		Duration:   formatDurationString(r.Stats.Duration),
	}

	meta := yamlMeta{
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

	return yamlOutput{
		Pairs:    pairs,
		Unpaired: unpaired,
		Stats:    stats,
		Meta:     meta,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
