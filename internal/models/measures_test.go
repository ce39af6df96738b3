package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMeasures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.yaml")
	yaml := []byte(`
items:
  - id: mental_fatigue
    title: "Mental fatigue"
    type: vas
    min: 0
    max: 100
    min_label: "None at all"
    max_label: "Extremely fatigued"
    required: true
  - id: task_effort
    title: "Effort"
    type: likert
    min: 1
    max: 7
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	set, err := LoadMeasures(path)
	require.NoError(t, err)
	require.Len(t, set.Items, 2)

	assert.Equal(t, "mental_fatigue", set.Items[0].ID)
	assert.Equal(t, "vas", set.Items[0].Type)
	assert.Equal(t, 100, set.Items[0].Max)
	assert.True(t, set.Items[0].Required)
	assert.Equal(t, "likert", set.Items[1].Type)
	assert.False(t, set.Items[1].Required)
}

func TestLoadMeasuresMissingFile(t *testing.T) {
	_, err := LoadMeasures(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMeasuresBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: {not: [a, list"), 0o644))
	_, err := LoadMeasures(path)
	assert.Error(t, err)
}
