package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blenderctl/internal/batch"
	"blenderctl/internal/blender"
)

var (
	batchPattern  string
	batchInput    string
	batchScript   string
	batchOutput   string
	batchParallel int
	batchReport   string
)

var batchCmd = &cobra.Command{
	Use:   "batch --script process.py [-- script args...]",
	Short: "Run a script over every matching .blend file",
	Long: `Fans a Python script out over all files matching --pattern, one
Blender subprocess per file. Arguments after -- are forwarded to the
script with {output} and {stem} expanded per file. A per-file status
line is printed as each finishes (completion order); the exit code is
non-zero if any file failed.

Example:
  blenderctl batch -p "*.blend" -s export.py -o dist -j 4 -- --output {output}`,
	Args: cobra.ArbitraryArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchPattern, "pattern", "p", "*.blend", "Glob pattern for input files")
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", ".", "Input directory")
	batchCmd.Flags().StringVarP(&batchScript, "script", "s", "", "Python script to run on each file (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output directory for {output} expansion")
	batchCmd.Flags().IntVarP(&batchParallel, "parallel", "j", 0, "Parallel Blender processes (default from config)")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "Write full per-file JSON report to path")
	_ = batchCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(batchScript); err != nil {
		return fmt.Errorf("script %s: %w", batchScript, err)
	}

	files, err := batch.Glob(batchInput, batchPattern)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d files to process\n", len(files))

	if batchOutput != "" {
		if err := os.MkdirAll(batchOutput, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	runner, err := newRunner()
	if err != nil {
		return err
	}
	extra, err := baseExtraArgs()
	if err != nil {
		return err
	}

	workers := batchParallel
	if workers <= 0 {
		workers = cfg.Batch.Parallel
	}
	fileTimeout := cfg.GetFileTimeout()
	if timeoutFlag > 0 {
		fileTimeout = timeoutFlag
	}

	scriptAbs, err := filepath.Abs(batchScript)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}

	pool := batch.NewPool(runner, workers, logger)
	pool.OnResult = func(fr batch.FileResult) {
		fmt.Printf("[%s] %s\n", statusMark(fr.OK), fr.File)
	}

	ctx, cancel := commandContext()
	defer cancel()

	report := pool.Process(ctx, scriptAbs, batchPattern, files, func(file string) blender.Invocation {
		return blender.Invocation{
			BlendFile:   file,
			Script:      scriptAbs,
			Passthrough: batch.ExpandArgs(args, file, batchOutput),
			ExtraArgs:   extra,
			Timeout:     fileTimeout,
		}
	})

	fmt.Printf("\nProcessed: %d files, %d success, %d failed\n",
		len(report.Results), report.Success, report.Failed)
	fmt.Println(dimStyle.Render("run " + report.RunID))

	if batchReport != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode batch report: %w", err)
		}
		if err := os.WriteFile(batchReport, data, 0o644); err != nil {
			return fmt.Errorf("write batch report: %w", err)
		}
		logger.Info("Batch report written",
			zap.String("path", batchReport),
			zap.String("run_id", report.RunID))
	}

	if report.AnyFailed() {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Results))
	}
	return nil
}
