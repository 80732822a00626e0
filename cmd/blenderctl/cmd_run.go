package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blenderctl/internal/blender"
)

var (
	runExpr        string
	runBlendFile   string
	runExtraArgs   string
	runShowVersion bool
)

var runCmd = &cobra.Command{
	Use:   "run [script.py] [-- script args...]",
	Short: "Run a Python script or expression inside headless Blender",
	Long: `Runs Blender in background mode with a Python script (--python) or a
one-line expression (--expr). Arguments after -- are forwarded to the
script unchanged. Output streams live and the Blender exit code
propagates.

Examples:
  blenderctl run setup.py
  blenderctl run setup.py --blend scene.blend -- --size 4
  blenderctl run --expr "import bpy; print(len(bpy.data.objects))"`,
	Args: cobra.ArbitraryArgs,
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVarP(&runExpr, "expr", "e", "", "Python expression to execute")
	runCmd.Flags().StringVarP(&runBlendFile, "blend", "b", "", "Blend file to open")
	runCmd.Flags().StringVar(&runExtraArgs, "extra-args", "", "Additional Blender arguments (shell-style string)")
	runCmd.Flags().BoolVar(&runShowVersion, "show-version", false, "Print the resolved Blender version and exit")
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	var script string
	var passthrough []string

	// The first positional is the script; everything after -- belongs
	// to the script.
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		if dash > 0 {
			script = args[0]
		}
		passthrough = args[dash:]
	} else if len(args) > 0 {
		script = args[0]
		passthrough = args[1:]
	}

	if runShowVersion {
		return runVersion(cmd, nil)
	}
	if script == "" && runExpr == "" {
		return fmt.Errorf("either a script path or --expr is required")
	}
	if script != "" && runExpr != "" {
		return fmt.Errorf("cannot specify both a script and --expr")
	}
	if script != "" {
		if _, err := os.Stat(script); err != nil {
			return fmt.Errorf("script %s: %w", script, err)
		}
	}

	runner, err := newRunner()
	if err != nil {
		return err
	}
	extra, err := combinedExtraArgs(runExtraArgs)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := runner.Run(ctx, blender.Invocation{
		BlendFile:   runBlendFile,
		Script:      script,
		Expr:        runExpr,
		Passthrough: passthrough,
		ExtraArgs:   extra,
		Stream:      os.Stdout,
	})
	if err != nil {
		return err
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.Killed {
		return fmt.Errorf("blender %s", result.KillReason)
	}
	if result.ExitCode != 0 {
		logger.Debug("Script run failed", zap.Int("exit_code", result.ExitCode))
		return fmt.Errorf("blender exited with code %d", result.ExitCode)
	}
	return nil
}
