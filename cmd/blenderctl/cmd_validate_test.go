package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"blenderctl/internal/config"
)

func resetRenderFlags() {
	renderOutput = "out.png"
	renderFrame = -1
	renderStart = -1
	renderEnd = -1
	renderEngine = ""
	renderSamples = 0
	renderFormat = ""
	renderResolution = nil
	renderPercent = 0
}

// Validation must reject bad flag combinations before any executable
// resolution or subprocess work happens.
func TestRunRender_FlagValidation(t *testing.T) {
	cfg = config.Default()

	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{
			name:    "unknown engine",
			setup:   func() { renderEngine = "LUXRENDER" },
			wantErr: "unknown render engine",
		},
		{
			name:    "unknown format",
			setup:   func() { renderFormat = "WEBP" },
			wantErr: "unknown output format",
		},
		{
			name:    "percent out of range",
			setup:   func() { renderPercent = 150 },
			wantErr: "--percent",
		},
		{
			name:    "resolution needs two values",
			setup:   func() { renderResolution = []int{1920} },
			wantErr: "--resolution",
		},
		{
			name:    "frame excludes range",
			setup:   func() { renderFrame = 5; renderStart = 1 },
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRenderFlags()
			tt.setup()
			err := runRender(&cobra.Command{}, []string{"scene.blend"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func resetModifyFlags() {
	modifyScale = 0
	modifyApplyTransform = false
	modifyApplyModifiers = false
	modifyRemoveUnused = false
	modifyCenterOrigin = false
	modifySetOrigin = ""
	modifyTriangulate = false
	modifyDecimate = 0
	modifySmoothShading = false
	modifyFlatShading = false
	modifyOutput = ""
}

func TestRunModify_FlagValidation(t *testing.T) {
	cfg = config.Default()

	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{
			name:    "unknown origin mode",
			setup:   func() { modifySetOrigin = "TOP" },
			wantErr: "unknown origin mode",
		},
		{
			name:    "decimate out of range",
			setup:   func() { modifyDecimate = 1.5 },
			wantErr: "--decimate",
		},
		{
			name:    "conflicting shading",
			setup:   func() { modifySmoothShading = true; modifyFlatShading = true },
			wantErr: "mutually exclusive",
		},
		{
			name:    "nothing requested",
			setup:   func() {},
			wantErr: "no modifications requested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetModifyFlags()
			tt.setup()
			err := runModify(&cobra.Command{}, []string{"scene.blend"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}
