package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyFormatter_Format(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/models")
	assert.Contains(t, out, "firstmatch")
	assert.Contains(t, out, "unbounded")
	assert.Contains(t, out, "dragon")
	assert.Contains(t, out, "castle")
	assert.Contains(t, out, "/models/dragon.zip")
	assert.Contains(t, out, "/models/castle.png")
	assert.Contains(t, out, "Pairs: 2")
	assert.Contains(t, out, "Unpaired: 2")
}

func TestPrettyFormatter_Format_Empty(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	report := &Report{
		Source:   "/empty",
		Strategy: "firstmatch",
		Depth:    0,
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "No pairs found")
	assert.Contains(t, out, "Pairs: 0")
}

func TestPrettyFormatter_Format_Unpaired(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	report := &Report{
		UnpairedArchives: []string{"/models/orphan.7z"},
		UnpairedPreviews: []string{"/models/lonely.webp"},
		Source:           "/models",
		Strategy:         "firstmatch",
		Depth:            1,
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Unpaired:")
	assert.Contains(t, out, "archive")
	assert.Contains(t, out, "/models/orphan.7z")
	assert.Contains(t, out, "preview")
	assert.Contains(t, out, "/models/lonely.webp")
}

func TestPrettyFormatter_Format_Warnings(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	report := sampleReport()
	report.Warnings = []string{"/models/private: permission denied"}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "permission denied")
}

func TestPrettyFormatter_Format_Cancelled(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	report := sampleReport()
	report.Cancelled = true

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "interrupted")
}

func TestPrettyFormatter_Format_CacheStatus(t *testing.T) {
	tests := []struct {
		name      string
		fromCache bool
		fromStore bool
		want      string
	}{
		{"miss", false, false, "cache: miss"},
		{"hit", true, false, "cache: hit"},
		{"store", false, true, "cache: store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &PrettyFormatter{}
			var buf bytes.Buffer

			report := sampleReport()
			report.FromCache = tt.fromCache
			report.FromStore = tt.fromStore

			err := formatter.Format(&buf, report)
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrettyFormatter_Registration(t *testing.T) {
	formatter, err := Get("pretty")
	require.NoError(t, err)
	assert.IsType(t, &PrettyFormatter{}, formatter)
}

func TestFormatDepth(t *testing.T) {
	tests := []struct {
		depth int
		want  string
	}{
		{-1, "unbounded"},
		{-5, "unbounded"},
		{0, "0"},
		{3, "3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDepth(tt.depth))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1m 30s"},
		{2 * time.Hour, "2h 0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", padRight("abc", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "", padRight("", 0))
}
