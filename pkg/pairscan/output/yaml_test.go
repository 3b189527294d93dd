package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLFormatter_Format(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	var output map[string]interface{}
	err = yaml.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	pairs, ok := output["pairs"].([]interface{})
	require.True(t, ok)
	require.Len(t, pairs, 2)

	first, ok := pairs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/models/dragon.zip", first["archive"])
	assert.Equal(t, "dragon", first["base"])

	meta, ok := output["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "firstmatch", meta["strategy"])
	assert.Equal(t, -1, meta["depth"])
	assert.Equal(t, 2, meta["total_pairs"])
}

func TestYAMLFormatter_Format_Empty(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Report{})
	require.NoError(t, err)

	var output map[string]interface{}
	err = yaml.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	assert.Contains(t, output, "pairs")
	assert.Contains(t, output, "meta")
}

func TestYAMLFormatter_Format_Stats(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleReport())
	require.NoError(t, err)

	var output map[string]interface{}
	err = yaml.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	stats, ok := output["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3, stats["dirs_walked"])
	assert.Equal(t, 6, stats["files_seen"])
	assert.Equal(t, "2s", stats["duration"])
}

func TestYAMLFormatter_Registration(t *testing.T) {
	formatter, err := Get("yaml")
	require.NoError(t, err)
	assert.IsType(t, &YAMLFormatter{}, formatter)
}
