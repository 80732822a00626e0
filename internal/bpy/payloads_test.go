package bpy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadsEmbedded(t *testing.T) {
	for _, p := range Payloads() {
		t.Run(string(p), func(t *testing.T) {
			data, err := Source(p)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			// Every payload must speak the marker protocol.
			assert.Contains(t, string(data), resultBegin)
			assert.Contains(t, string(data), resultEnd)
			assert.Contains(t, string(data), "import bpy")
		})
	}
}

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()

	path, err := Materialize(PayloadConvert, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "convert.py"), path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	embedded, err := Source(PayloadConvert)
	require.NoError(t, err)
	assert.Equal(t, embedded, onDisk)
}

func TestEncodeOptions(t *testing.T) {
	type opts struct {
		Output string `json:"output"`
		Scale  float64
	}
	encoded, err := EncodeOptions(opts{Output: "out.glb", Scale: 2})
	require.NoError(t, err)
	assert.Contains(t, encoded, `"output":"out.glb"`)
}

func TestExtractResult(t *testing.T) {
	stdout := strings.Join([]string{
		"Blender 4.2.0 (hash abc)",
		"Read blend: scene.blend",
		"BLENDERCTL_RESULT_BEGIN",
		`{"exported": "out.glb", "object_count": 3}`,
		"BLENDERCTL_RESULT_END",
		"Blender quit",
	}, "\n")

	var result struct {
		Exported    string `json:"exported"`
		ObjectCount int    `json:"object_count"`
	}
	require.NoError(t, ExtractResult(stdout, &result))
	assert.Equal(t, "out.glb", result.Exported)
	assert.Equal(t, 3, result.ObjectCount)
}

func TestExtractResult_Multiline(t *testing.T) {
	stdout := "noise\nBLENDERCTL_RESULT_BEGIN\n{\n  \"saved\": \"a.blend\"\n}\nBLENDERCTL_RESULT_END\n"

	var result struct {
		Saved string `json:"saved"`
	}
	require.NoError(t, ExtractResult(stdout, &result))
	assert.Equal(t, "a.blend", result.Saved)
}

func TestExtractResult_PayloadError(t *testing.T) {
	stdout := "BLENDERCTL_RESULT_BEGIN\n{\"error\": \"unsupported export format: .xyz\"}\nBLENDERCTL_RESULT_END\n"

	err := ExtractResult(stdout, nil)
	var perr *PayloadError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unsupported export format: .xyz", perr.Message)
}

func TestExtractResult_NoMarkers(t *testing.T) {
	err := ExtractResult("Blender quit without printing anything useful", nil)
	assert.True(t, errors.Is(err, ErrNoResult))
}

func TestExtractResult_EndBeforeBegin(t *testing.T) {
	err := ExtractResult("BLENDERCTL_RESULT_END\nBLENDERCTL_RESULT_BEGIN\n", nil)
	assert.True(t, errors.Is(err, ErrNoResult))
}

func TestExtractResult_BadJSON(t *testing.T) {
	stdout := "BLENDERCTL_RESULT_BEGIN\nnot json\nBLENDERCTL_RESULT_END\n"
	var out map[string]any
	err := ExtractResult(stdout, &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResult))
}
