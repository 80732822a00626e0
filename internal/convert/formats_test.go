package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImport(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"scene.blend", true},
		{"model.FBX", true}, // case-insensitive
		{"mesh.obj", true},
		{"asset.gltf", true},
		{"asset.glb", true},
		{"stage.usdz", true},
		{"cache.abc", true},
		{"print.stl", true},
		{"scan.ply", true},
		{"old.dae", true},
		{"image.png", false},
		{"noext", false},
		{"archive.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateImport(tt.path)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat), "got: %v", err)
			}
		})
	}
}

func TestValidateExport_BlendRejected(t *testing.T) {
	err := ValidateExport("out.blend")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	assert.NoError(t, ValidateExport("out.glb"))
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{Input: "in.fbx", Output: "out.glb", ApplyModifiers: true}
	require.NoError(t, opts.Validate())

	assert.Error(t, Options{}.Validate())
	assert.Error(t, Options{Input: "in.xyz", Output: "out.glb"}.Validate())
	assert.Error(t, Options{Input: "in.fbx", Output: "out.xyz"}.Validate())
}

func TestExtensionTables(t *testing.T) {
	imports := ImportExtensions()
	exports := ExportExtensions()

	assert.Len(t, imports, len(exports)+1)
	assert.Contains(t, imports, ".blend")
	assert.NotContains(t, exports, ".blend")
}
