package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the resolved Blender executable and its version",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	runner, err := newRunner()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	version, err := runner.Version(ctx)
	if err != nil {
		return err
	}

	if versionJSON {
		data, err := json.MarshalIndent(map[string]string{
			"executable": runner.Executable(),
			"version":    version,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Blender: %s\n", runner.Executable())
	fmt.Printf("Version: %s\n", version)
	return nil
}
