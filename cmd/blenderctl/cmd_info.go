package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blenderctl/internal/bpy"
	"blenderctl/internal/scene"
)

var (
	infoSectionFlags map[string]*bool
	infoAll          bool
	infoJSON         bool
	infoOutput       string
)

var infoCmd = &cobra.Command{
	Use:   "info scene.blend",
	Short: "Inspect a .blend file's scene contents",
	Long: `Extracts scene information from a .blend file: objects, materials,
textures, cameras, lights, collections, animation timeline, and render
settings. With no section flags everything is collected.

Output is a human summary by default; --json (or --output) emits the
raw report.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoSectionFlags = make(map[string]*bool, len(scene.AllSections()))
	for _, section := range scene.AllSections() {
		flagName := section
		if section == scene.SectionRender {
			flagName = "render-settings" // avoid confusion with the render command
		}
		v := new(bool)
		infoCmd.Flags().BoolVar(v, flagName, false, "Include "+section+" section")
		infoSectionFlags[section] = v
	}
	infoCmd.Flags().BoolVarP(&infoAll, "all", "a", false, "Include all sections (default when none given)")
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output raw JSON")
	infoCmd.Flags().StringVarP(&infoOutput, "output", "o", "", "Write JSON report to file")
	rootCmd.AddCommand(infoCmd)
}

func selectedSections() []string {
	if infoAll {
		return nil // payload default: everything
	}
	var sections []string
	for _, section := range scene.AllSections() {
		if *infoSectionFlags[section] {
			sections = append(sections, section)
		}
	}
	return sections
}

func runInfo(cmd *cobra.Command, args []string) error {
	blendFile := args[0]

	sections := selectedSections()
	if err := scene.ValidateSections(sections); err != nil {
		return err
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

	var info scene.Info
	if _, err := bpy.Exec(ctx, runner, bpy.ExecSpec{
		Payload:   bpy.PayloadSceneInfo,
		BlendFile: blendFile,
		Options:   scene.Request{Sections: sections},
		ExtraArgs: extra,
	}, &info); err != nil {
		return err
	}

	if infoOutput != "" || infoJSON {
		data, err := json.MarshalIndent(&info, "", "  ")
		if err != nil {
			return fmt.Errorf("encode scene report: %w", err)
		}
		if infoOutput != "" {
			if err := os.WriteFile(infoOutput, data, 0o644); err != nil {
				return fmt.Errorf("write scene report: %w", err)
			}
			fmt.Printf("Scene info written to %s\n", infoOutput)
			return nil
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(info.Summary())
	return nil
}
