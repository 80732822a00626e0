package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blenderctl/internal/bpy"
)

// renderOptions is the JSON document handed to the render payload.
type renderOptions struct {
	Output      string `json:"output"`
	Frame       *int   `json:"frame,omitempty"`
	Start       *int   `json:"start,omitempty"`
	End         *int   `json:"end,omitempty"`
	Engine      string `json:"engine,omitempty"`
	Samples     int    `json:"samples,omitempty"`
	Format      string `json:"format,omitempty"`
	ResolutionX int    `json:"resolution_x,omitempty"`
	ResolutionY int    `json:"resolution_y,omitempty"`
	Percent     int    `json:"percent,omitempty"`
}

// renderResult is the render payload's report.
type renderResult struct {
	Error      string `json:"error,omitempty"`
	Output     string `json:"output"`
	Engine     string `json:"engine"`
	Frames     []int  `json:"frames"`
	FrameCount int    `json:"frame_count"`
}

var renderEngines = map[string]bool{
	"CYCLES":             true,
	"BLENDER_EEVEE":      true,
	"BLENDER_EEVEE_NEXT": true,
	"BLENDER_WORKBENCH":  true,
}

var renderFormats = map[string]bool{
	"PNG":                 true,
	"JPEG":                true,
	"OPEN_EXR":            true,
	"OPEN_EXR_MULTILAYER": true,
	"TIFF":                true,
	"BMP":                 true,
	"FFMPEG":              true,
}

var (
	renderOutput     string
	renderFrame      int
	renderStart      int
	renderEnd        int
	renderEngine     string
	renderSamples    int
	renderFormat     string
	renderResolution []int
	renderPercent    int
)

var renderCmd = &cobra.Command{
	Use:   "render scene.blend -o output",
	Short: "Render frames or animations from a .blend file",
	Long: `Renders the given .blend file headlessly. --frame renders one still;
--start/--end render an animation; with neither, the scene's current
frame is rendered.

Engines: CYCLES, BLENDER_EEVEE, BLENDER_EEVEE_NEXT, BLENDER_WORKBENCH
Formats: PNG, JPEG, OPEN_EXR, OPEN_EXR_MULTILAYER, TIFF, BMP, FFMPEG`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output path (required)")
	renderCmd.Flags().IntVarP(&renderFrame, "frame", "f", -1, "Single frame to render")
	renderCmd.Flags().IntVarP(&renderStart, "start", "s", -1, "Animation start frame")
	renderCmd.Flags().IntVarP(&renderEnd, "end", "e", -1, "Animation end frame")
	renderCmd.Flags().StringVar(&renderEngine, "engine", "", "Render engine")
	renderCmd.Flags().IntVar(&renderSamples, "samples", 0, "Render samples (Cycles/Eevee)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "Output image format")
	renderCmd.Flags().IntSliceVar(&renderResolution, "resolution", nil, "Resolution as X,Y")
	renderCmd.Flags().IntVar(&renderPercent, "percent", 0, "Resolution percentage (1-100)")
	_ = renderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	blendFile := args[0]

	if renderEngine != "" && !renderEngines[renderEngine] {
		return fmt.Errorf("unknown render engine %q", renderEngine)
	}
	if renderFormat != "" && !renderFormats[renderFormat] {
		return fmt.Errorf("unknown output format %q", renderFormat)
	}
	if renderPercent != 0 && (renderPercent < 1 || renderPercent > 100) {
		return fmt.Errorf("--percent must be 1-100, got %d", renderPercent)
	}
	if len(renderResolution) != 0 && len(renderResolution) != 2 {
		return fmt.Errorf("--resolution takes X,Y (got %d values)", len(renderResolution))
	}
	if renderFrame >= 0 && (renderStart >= 0 || renderEnd >= 0) {
		return fmt.Errorf("--frame and --start/--end are mutually exclusive")
	}

	opts := renderOptions{
		Output:  renderOutput,
		Engine:  renderEngine,
		Samples: renderSamples,
		Format:  renderFormat,
		Percent: renderPercent,
	}
	if renderFrame >= 0 {
		opts.Frame = &renderFrame
	}
	if renderStart >= 0 {
		opts.Start = &renderStart
	}
	if renderEnd >= 0 {
		opts.End = &renderEnd
	}
	if len(renderResolution) == 2 {
		opts.ResolutionX = renderResolution[0]
		opts.ResolutionY = renderResolution[1]
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

	logger.Info("Rendering",
		zap.String("blend", blendFile),
		zap.String("output", renderOutput),
		zap.String("engine", renderEngine))

	var result renderResult
	if _, err := bpy.Exec(ctx, runner, bpy.ExecSpec{
		Payload:   bpy.PayloadRender,
		BlendFile: blendFile,
		Options:   opts,
		ExtraArgs: extra,
	}, &result); err != nil {
		return err
	}

	noun := "frame"
	if result.FrameCount != 1 {
		noun = "frames"
	}
	fmt.Printf("%s rendered %d %s (%s) -> %s\n",
		statusMark(true), result.FrameCount, noun, result.Engine, result.Output)
	return nil
}
