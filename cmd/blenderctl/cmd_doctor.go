package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"blenderctl/internal/blender"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose Blender executable discovery",
	Long: `Walks every discovery source in resolution order (--blender flag,
BLENDER_EXE, config file, well-known install paths, $PATH), reports
each probe's outcome, and runs a version check against the winner.
Exits non-zero when no executable resolves.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	exe, probes, resolveErr := blender.NewLocator(blenderFlag, cfg.Blender.Executable, logger).Resolve()

	fmt.Println("Executable discovery:")
	for _, p := range probes {
		fmt.Printf("  [%s] %s\n", statusMark(p.Found), p.ProbeLine())
	}

	if resolveErr != nil {
		if errors.Is(resolveErr, blender.ErrNotFound) {
			fmt.Println()
			fmt.Println("No Blender executable found. Set BLENDER_EXE in your")
			fmt.Println("environment or .env file, for example:")
			fmt.Println("  BLENDER_EXE=/Applications/Blender.app/Contents/MacOS/Blender")
		}
		return resolveErr
	}

	fmt.Printf("\nResolved: %s\n", exe)

	runner := blender.NewRunner(exe, invocationTimeout(), cfg.Blender.MaxOutputBytes, logger)

	ctx, cancel := commandContext()
	defer cancel()

	version, err := runner.Version(ctx)
	if err != nil {
		fmt.Printf("Version probe: [%s] %v\n", statusMark(false), err)
		return fmt.Errorf("executable found but version probe failed")
	}
	fmt.Printf("Version probe: [%s] %s\n", statusMark(true), version)
	return nil
}
