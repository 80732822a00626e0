// Package convert validates 3D format conversions and marshals the
// options for the in-Blender convert payload. Extension checks happen
// here, before any subprocess is spawned.
package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat indicates a file extension outside the
// import/export tables.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// importExts are the formats Blender can open or import here. Values
// are short labels for help output.
var importExts = map[string]string{
	".blend": "Blender",
	".fbx":   "FBX",
	".obj":   "Wavefront OBJ",
	".gltf":  "glTF",
	".glb":   "glTF binary",
	".usd":   "USD",
	".usda":  "USD ASCII",
	".usdc":  "USD crate",
	".usdz":  "USD zip",
	".abc":   "Alembic",
	".stl":   "STL",
	".ply":   "PLY",
	".dae":   "Collada",
}

// exportExts is importExts minus .blend; conversion to .blend is a
// save, not an export, and is covered by modify --output.
var exportExts = func() map[string]string {
	out := make(map[string]string, len(importExts))
	for ext, label := range importExts {
		if ext != ".blend" {
			out[ext] = label
		}
	}
	return out
}()

// Options is the JSON document handed to the convert payload.
type Options struct {
	Input          string `json:"input,omitempty"`
	Output         string `json:"output"`
	SelectionOnly  bool   `json:"selection_only,omitempty"`
	ApplyModifiers bool   `json:"apply_modifiers"`
	ClearScene     bool   `json:"clear_scene,omitempty"`
}

// Result is the convert payload's report.
type Result struct {
	Error       string `json:"error,omitempty"`
	Imported    string `json:"imported,omitempty"`
	Exported    string `json:"exported"`
	ObjectCount int    `json:"object_count"`
}

// ValidateImport rejects input paths whose extension is not importable.
func ValidateImport(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := importExts[ext]; !ok {
		return fmt.Errorf("%w: cannot import %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.Join(ImportExtensions(), " "))
	}
	return nil
}

// ValidateExport rejects output paths whose extension is not exportable.
func ValidateExport(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := exportExts[ext]; !ok {
		return fmt.Errorf("%w: cannot export %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.Join(ExportExtensions(), " "))
	}
	return nil
}

// Validate checks both sides of a conversion.
func (o Options) Validate() error {
	if o.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if o.Input != "" {
		if err := ValidateImport(o.Input); err != nil {
			return err
		}
	}
	return ValidateExport(o.Output)
}

// ImportExtensions returns the sorted importable extensions.
func ImportExtensions() []string {
	return sortedKeys(importExts)
}

// ExportExtensions returns the sorted exportable extensions.
func ExportExtensions() []string {
	return sortedKeys(exportExts)
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for ext := range m {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
