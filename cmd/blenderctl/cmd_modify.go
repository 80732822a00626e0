package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blenderctl/internal/bpy"
)

// modifyOptions is the JSON document handed to the modify payload.
// The payload applies mutations in a fixed order: scale, transforms,
// center-origin, set-origin, triangulate, decimate, modifiers,
// shading, purge, save.
type modifyOptions struct {
	Scale           float64 `json:"scale,omitempty"`
	ApplyTransforms bool    `json:"apply_transforms,omitempty"`
	ApplyModifiers  bool    `json:"apply_modifiers,omitempty"`
	RemoveUnused    bool    `json:"remove_unused,omitempty"`
	CenterOrigin    bool    `json:"center_origin,omitempty"`
	SetOrigin       string  `json:"set_origin,omitempty"`
	Triangulate     bool    `json:"triangulate,omitempty"`
	Decimate        float64 `json:"decimate,omitempty"`
	Shading         string  `json:"shading,omitempty"`
	Output          string  `json:"output,omitempty"`
}

type modifyStep struct {
	Step     string `json:"step"`
	Affected int    `json:"affected"`
}

type modifyResult struct {
	Error string       `json:"error,omitempty"`
	Steps []modifyStep `json:"steps"`
	Saved string       `json:"saved,omitempty"`
}

var originModes = map[string]bool{"CENTER": true, "BOTTOM": true, "CURSOR": true}

var (
	modifyScale          float64
	modifyApplyTransform bool
	modifyApplyModifiers bool
	modifyRemoveUnused   bool
	modifyCenterOrigin   bool
	modifySetOrigin      string
	modifyTriangulate    bool
	modifyDecimate       float64
	modifySmoothShading  bool
	modifyFlatShading    bool
	modifyOutput         string
)

var modifyCmd = &cobra.Command{
	Use:   "modify scene.blend [flags]",
	Short: "Apply common scene mutations to a .blend file",
	Long: `Applies requested mutations inside Blender in a fixed order and
optionally saves the result with --output. Without --output the
changes are applied in-session only (useful for validating that the
operations succeed).`,
	Args: cobra.ExactArgs(1),
	RunE: runModify,
}

func init() {
	modifyCmd.Flags().Float64Var(&modifyScale, "scale", 0, "Scale all objects by factor")
	modifyCmd.Flags().BoolVar(&modifyApplyTransform, "apply-transforms", false, "Apply all object transforms")
	modifyCmd.Flags().BoolVar(&modifyApplyModifiers, "apply-modifiers", false, "Apply all modifiers on meshes")
	modifyCmd.Flags().BoolVar(&modifyRemoveUnused, "remove-unused", false, "Purge unused data blocks")
	modifyCmd.Flags().BoolVar(&modifyCenterOrigin, "center-origin", false, "Center origins to geometry")
	modifyCmd.Flags().StringVar(&modifySetOrigin, "set-origin", "", "Set origin mode: CENTER, BOTTOM, CURSOR")
	modifyCmd.Flags().BoolVar(&modifyTriangulate, "triangulate", false, "Triangulate all meshes")
	modifyCmd.Flags().Float64Var(&modifyDecimate, "decimate", 0, "Decimate ratio (0.0-1.0)")
	modifyCmd.Flags().BoolVar(&modifySmoothShading, "smooth-shading", false, "Smooth shading on all meshes")
	modifyCmd.Flags().BoolVar(&modifyFlatShading, "flat-shading", false, "Flat shading on all meshes")
	modifyCmd.Flags().StringVarP(&modifyOutput, "output", "o", "", "Save modified .blend to path")
	rootCmd.AddCommand(modifyCmd)
}

func runModify(cmd *cobra.Command, args []string) error {
	blendFile := args[0]

	if modifySetOrigin != "" && !originModes[modifySetOrigin] {
		return fmt.Errorf("unknown origin mode %q (CENTER, BOTTOM, CURSOR)", modifySetOrigin)
	}
	if modifyDecimate != 0 && (modifyDecimate <= 0 || modifyDecimate > 1) {
		return fmt.Errorf("--decimate must be in (0.0, 1.0], got %g", modifyDecimate)
	}
	if modifySmoothShading && modifyFlatShading {
		return fmt.Errorf("--smooth-shading and --flat-shading are mutually exclusive")
	}

	opts := modifyOptions{
		Scale:           modifyScale,
		ApplyTransforms: modifyApplyTransform,
		ApplyModifiers:  modifyApplyModifiers,
		RemoveUnused:    modifyRemoveUnused,
		CenterOrigin:    modifyCenterOrigin,
		SetOrigin:       modifySetOrigin,
		Triangulate:     modifyTriangulate,
		Decimate:        modifyDecimate,
		Output:          modifyOutput,
	}
	switch {
	case modifySmoothShading:
		opts.Shading = "smooth"
	case modifyFlatShading:
		opts.Shading = "flat"
	}

	if opts == (modifyOptions{}) {
		return fmt.Errorf("no modifications requested")
	}

	runner, err := newRunner()
	if err != nil {
		return err
	}
	extra, err := baseExtraArgs()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	logger.Info("Modifying scene", zap.String("blend", blendFile))

	var result modifyResult
	if _, err := bpy.Exec(ctx, runner, bpy.ExecSpec{
		Payload:   bpy.PayloadModify,
		BlendFile: blendFile,
		Options:   opts,
		ExtraArgs: extra,
	}, &result); err != nil {
		return err
	}

	for _, step := range result.Steps {
		fmt.Printf("  %s (%d objects)\n", step.Step, step.Affected)
	}
	if result.Saved != "" {
		fmt.Printf("%s saved to %s\n", statusMark(true), result.Saved)
	} else {
		fmt.Printf("%s %d steps applied (not saved, use --output)\n", statusMark(true), len(result.Steps))
	}
	return nil
}
