package output

import (
	"bytes"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	_, err := tw.Write([]byte("ARCHIVE\tPREVIEW\tBASE\n"))
	if err != nil {
		return err
	}

	for _, pair := range r.Pairs {
		_, err := tw.Write([]byte(pair.Archive + "\t" + pair.Preview + "\t" + pair.Base + "\n"))
		if err != nil {
			return err
		}
	}

	// Unpaired rows use "-" in the missing columns
	for _, path := range r.UnpairedArchives {
		if _, err := tw.Write([]byte(path + "\t-\t-\n")); err != nil {
			return err
		}
	}
	for _, path := range r.UnpairedPreviews {
		if _, err := tw.Write([]byte("-\t" + path + "\t-\n")); err != nil {
			return err
		}
	}

	// Flush tabwriter to buffer
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
