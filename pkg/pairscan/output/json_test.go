package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	var output map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	pairs, ok := output["pairs"].([]interface{})
	require.True(t, ok)
	require.Len(t, pairs, 2)

	first, ok := pairs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/models/dragon.zip", first["archive"])
	assert.Equal(t, "/models/dragon.jpg", first["preview"])
	assert.Equal(t, "dragon", first["base"])
	assert.Equal(t, "/models", first["dir"])

	unpaired, ok := output["unpaired"].(map[string]interface{})
	require.True(t, ok)
	archives, ok := unpaired["archives"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"/models/orphan.7z"}, archives)

	stats, ok := output["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), stats["dirs_walked"])
	assert.Equal(t, float64(6), stats["files_seen"])
	assert.Equal(t, "2s", stats["duration"])

	meta, ok := output["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/models", meta["source"])
	assert.Equal(t, "firstmatch", meta["strategy"])
	assert.Equal(t, float64(-1), meta["depth"])
	assert.Equal(t, float64(2), meta["total_pairs"])
	assert.Equal(t, float64(2), meta["total_unpaired"])
	assert.Equal(t, false, meta["cancelled"])
}

func TestJSONFormatter_Format_Empty(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Report{})
	require.NoError(t, err)

	var output map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	// Empty slices encode as [], never null
	pairs, ok := output["pairs"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, pairs)

	unpaired, ok := output["unpaired"].(map[string]interface{})
	require.True(t, ok)
	archives, ok := unpaired["archives"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, archives)
}

func TestJSONFormatter_Format_Indented(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(buf.String(), "{\n"))
	assert.Contains(t, buf.String(), "  \"pairs\"")
}

func TestJSONFormatter_Format_Meta(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	report := sampleReport()
	report.FromCache = true
	report.Warnings = []string{"/models/private: permission denied"}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	var output map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	meta, ok := output["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, meta["from_cache"])
	assert.Equal(t, false, meta["from_store"])
	assert.Equal(t, report.ScanID, meta["scan_id"])

	warnings, ok := meta["warnings"].([]interface{})
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "permission denied")
}

func TestJSONFormatter_Registration(t *testing.T) {
	formatter, err := Get("json")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, formatter)
}

func TestJSONLFormatter_Format(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	err = json.Unmarshal([]byte(lines[0]), &first)
	require.NoError(t, err)
	assert.Equal(t, "/models/dragon.zip", first["archive"])
	assert.Equal(t, "dragon", first["base"])

	var second map[string]interface{}
	err = json.Unmarshal([]byte(lines[1]), &second)
	require.NoError(t, err)
	assert.Equal(t, "castle", second["base"])
}

func TestJSONLFormatter_Format_Empty(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Report{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestJSONLFormatter_Format_Compact(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	// One line per pair, no indentation
	assert.NotContains(t, buf.String(), "  ")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestJSONLFormatter_Registration(t *testing.T) {
	formatter, err := Get("jsonl")
	require.NoError(t, err)
	assert.IsType(t, &JSONLFormatter{}, formatter)
}
