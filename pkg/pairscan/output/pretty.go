package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	header := f.formatHeader(r)
	w.WriteString(header)
	w.WriteString("\n")

	table := f.formatPairs(r)
	w.WriteString(table)

	if r.TotalUnpaired() > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatUnpaired(r))
	}

	footer := f.formatFooter(r)
	w.WriteString(footer)

	if len(r.Warnings) > 0 {
		warnings := f.formatWarnings(r.Warnings)
		w.WriteString("\n")
		w.WriteString(warnings)
	}

	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	var infoParts []string

	strategyLabel := LabelStyle.Render("Strategy:")
	strategyValue := ValueStyle.Render(r.Strategy)
	infoParts = append(infoParts, fmt.Sprintf("%s %s", strategyLabel, strategyValue))

	depthLabel := LabelStyle.Render("Depth:")
	depthValue := ValueStyle.Render(formatDepth(r.Depth))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", depthLabel, depthValue))

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%s files in %s",
		humanize.Comma(r.Stats.FilesSeen), formatDuration(r.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	infoParts = append(infoParts, f.formatCacheStatus(r))

	lines = append(lines, strings.Join(infoParts, "  "))

	if r.Cancelled {
		cancelledStyle := WarningStyle.Bold(true)
		lines = append(lines, cancelledStyle.Render("Scan interrupted; results are partial"))
	}

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatCacheStatus returns a styled string indicating where the result
// came from.
func (f *PrettyFormatter) formatCacheStatus(r *Report) string {
	switch {
	case r.FromCache:
		return SuccessStyle.Render("cache: hit")
	case r.FromStore:
		return SuccessStyle.Render("cache: store")
	default:
		return MutedStyle.Render("cache: miss")
	}
}

// formatPairs builds the pair table with BASE, ARCHIVE and PREVIEW columns.
func (f *PrettyFormatter) formatPairs(r *Report) string {
	if len(r.Pairs) == 0 {
		return MutedStyle.Render("  No pairs found\n")
	}

	var sb strings.Builder

	baseHeader := TableHeaderStyle.Render("BASE")
	archiveHeader := TableHeaderStyle.Render("ARCHIVE")
	previewHeader := TableHeaderStyle.Render("PREVIEW")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", baseHeader, archiveHeader, previewHeader))

	// Pad the base column for alignment; paths stay free-form
	maxBaseWidth := 0
	for _, pair := range r.Pairs {
		if len(pair.Base) > maxBaseWidth {
			maxBaseWidth = len(pair.Base)
		}
	}
	if maxBaseWidth < 8 {
		maxBaseWidth = 8
	}

	for _, pair := range r.Pairs {
		baseStr := BaseStyle.Render(padRight(pair.Base, maxBaseWidth))
		archiveStr := PathStyle.Render(pair.Archive)
		previewStr := MutedStyle.Render(pair.Preview)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", baseStr, archiveStr, previewStr))
	}

	return sb.String()
}

// formatUnpaired builds the section listing files without a partner.
func (f *PrettyFormatter) formatUnpaired(r *Report) string {
	var sb strings.Builder

	titleStyle := TitleStyle
	sb.WriteString(titleStyle.Render("Unpaired:"))
	sb.WriteString("\n")

	for _, path := range r.UnpairedArchives {
		label := LabelStyle.Render("archive")
		sb.WriteString(fmt.Sprintf("  %s  %s\n", label, PathStyle.Render(path)))
	}
	for _, path := range r.UnpairedPreviews {
		label := LabelStyle.Render("preview")
		sb.WriteString(fmt.Sprintf("  %s  %s\n", label, PathStyle.Render(path)))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	pairsLabel := LabelStyle.Render("Pairs:")
	pairsValue := ValueStyle.Render(fmt.Sprintf("%d", r.TotalPairs()))
	parts = append(parts, fmt.Sprintf("%s %s", pairsLabel, pairsValue))

	unpairedLabel := LabelStyle.Render("Unpaired:")
	unpairedValue := ValueStyle.Render(fmt.Sprintf("%d", r.TotalUnpaired()))
	parts = append(parts, fmt.Sprintf("%s %s", unpairedLabel, unpairedValue))

	dirsLabel := LabelStyle.Render("Dirs:")
	dirsValue := ValueStyle.Render(humanize.Comma(r.Stats.DirsWalked))
	parts = append(parts, fmt.Sprintf("%s %s", dirsLabel, dirsValue))

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDepth renders a depth limit, with -1 meaning unbounded.
func formatDepth(depth int) string {
	if depth < 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d", depth)
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
