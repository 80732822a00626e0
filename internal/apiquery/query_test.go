package apiquery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"summary", Request{Mode: ModeSummary}, true},
		{"modules", Request{Mode: ModeModules}, true},
		{"data", Request{Mode: ModeData}, true},
		{"context", Request{Mode: ModeContext}, true},
		{"search with query", Request{Mode: ModeSearch, Query: "export gltf"}, true},
		{"search without query", Request{Mode: ModeSearch}, false},
		{"types without query", Request{Mode: ModeTypes}, false},
		{"operator with target", Request{Mode: ModeOperator, Target: "bpy.ops.export_scene.gltf"}, true},
		{"operator without target", Request{Mode: ModeOperator}, false},
		{"type without target", Request{Mode: ModeType}, false},
		{"unknown mode", Request{Mode: "everything"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRenderOperator(t *testing.T) {
	raw := `{
	  "version": "4.2.0",
	  "mode": "operator",
	  "path": "bpy.ops.export_scene.gltf",
	  "name": "Export glTF 2.0",
	  "description": "Export scene as glTF 2.0 file",
	  "parameters": [
	    {"name": "filepath", "type": "STRING", "description": "Filepath used for exporting the file"},
	    {
	      "name": "export_format", "type": "ENUM", "default": "GLB",
	      "options": [
	        {"id": "GLB", "name": "glTF Binary", "description": ""},
	        {"id": "GLTF_SEPARATE", "name": "glTF Separate", "description": ""},
	        {"id": "GLTF_EMBEDDED", "name": "glTF Embedded", "description": ""},
	        {"id": "A", "name": "", "description": ""},
	        {"id": "B", "name": "", "description": ""},
	        {"id": "C", "name": "", "description": ""},
	        {"id": "D", "name": "", "description": ""}
	      ]
	    },
	    {"name": "export_jpeg_quality", "type": "INT", "min": 0, "max": 100}
	  ]
	}`
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	out := Render(Request{Mode: ModeOperator, Target: resp.Path}, &resp)

	assert.Contains(t, out, "Blender 4.2.0 API")
	assert.Contains(t, out, "bpy.ops.export_scene.gltf")
	assert.Contains(t, out, "Name: Export glTF 2.0")
	assert.Contains(t, out, "Parameters (3):")
	assert.Contains(t, out, "- filepath: STRING")
	assert.Contains(t, out, "- export_format: ENUM = GLB")
	assert.Contains(t, out, "Options: GLB, GLTF_SEPARATE, GLTF_EMBEDDED, A, B, ... (+2 more)")
	assert.Contains(t, out, "Range: 0 to 100")
}

func TestRenderSearch(t *testing.T) {
	resp := &Response{
		Version: "4.2.0",
		Matches: []OperatorMatch{
			{Path: "bpy.ops.export_scene.gltf", Name: "Export glTF 2.0", Description: "Export scene as glTF"},
			{Path: "bpy.ops.import_scene.gltf", Name: "Import glTF 2.0", Description: "Load a glTF file"},
		},
	}

	out := Render(Request{Mode: ModeSearch, Query: "gltf"}, resp)
	assert.Contains(t, out, `Operators matching "gltf": 2`)
	assert.Contains(t, out, "bpy.ops.export_scene.gltf")
	assert.Contains(t, out, "Load a glTF file")
}

func TestRenderModules(t *testing.T) {
	resp := &Response{
		Modules: []ModuleCount{
			{Module: "bpy.ops.export_scene", Count: 3},
			{Module: "bpy.ops.mesh", Count: 120},
		},
	}

	out := Render(Request{Mode: ModeModules}, resp)
	assert.Contains(t, out, "Operator modules (2)")
	assert.Contains(t, out, "bpy.ops.mesh: 120 operators")
	assert.Contains(t, out, "Total: 123 operators")
}

func TestRenderType_TruncatesProperties(t *testing.T) {
	resp := &Response{Path: "bpy.types.Mesh", Doc: "Mesh data-block"}
	for i := 0; i < 35; i++ {
		resp.Properties = append(resp.Properties, Prop{Name: "p", Type: "FLOAT"})
	}

	out := Render(Request{Mode: ModeType, Target: "bpy.types.Mesh"}, resp)
	assert.Contains(t, out, "Properties (35):")
	assert.Contains(t, out, "... and 5 more")
}

func TestRenderSummary(t *testing.T) {
	resp := &Response{
		Version:           "4.2.0",
		OperatorModules:   80,
		TotalOperators:    2100,
		Types:             900,
		DataCollections:   30,
		ContextAttributes: 60,
	}

	out := Render(Request{Mode: ModeSummary}, resp)
	assert.Contains(t, out, "Operator modules: 80")
	assert.Contains(t, out, "Total operators: 2100")
}

func TestRenderDataAndContext(t *testing.T) {
	resp := &Response{
		Collections: []DataCollection{{Path: "bpy.data.objects", Name: "objects", Count: 5}},
	}
	out := Render(Request{Mode: ModeData}, resp)
	assert.Contains(t, out, "bpy.data.objects (5 items)")

	resp = &Response{
		Attributes: []ContextAttr{{Path: "bpy.context.scene", Name: "scene", Type: "Scene"}},
	}
	out = Render(Request{Mode: ModeContext}, resp)
	assert.Contains(t, out, "bpy.context.scene: Scene")
}
