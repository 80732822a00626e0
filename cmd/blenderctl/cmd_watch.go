package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blenderctl/internal/batch"
	"blenderctl/internal/blender"
	"blenderctl/internal/watch"
)

var (
	watchPattern string
	watchInput   string
	watchScript  string
	watchOutput  string
	watchSettle  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch --script process.py [-- script args...]",
	Short: "Re-run a script whenever matching files change",
	Long: `Watches --input for files matching --pattern and reprocesses each one
after its writes settle, with the same {output}/{stem} argument
expansion as batch. Runs until interrupted.

Example:
  blenderctl watch -p "*.blend" -s export.py -o dist -- --output {output}`,
	Args: cobra.ArbitraryArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchPattern, "pattern", "p", "*.blend", "Glob pattern for watched files")
	watchCmd.Flags().StringVarP(&watchInput, "input", "i", ".", "Directory to watch")
	watchCmd.Flags().StringVarP(&watchScript, "script", "s", "", "Python script to run on each changed file (required)")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output directory for {output} expansion")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "Quiet period before a changed file is processed")
	_ = watchCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(watchScript); err != nil {
		return fmt.Errorf("script %s: %w", watchScript, err)
	}
	scriptAbs, err := filepath.Abs(watchScript)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}

	if watchOutput != "" {
		if err := os.MkdirAll(watchOutput, 0o755); err != nil {
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
	fileTimeout := cfg.GetFileTimeout()
	if timeoutFlag > 0 {
		fileTimeout = timeoutFlag
	}

	ctx, cancel := commandContext()
	defer cancel()

	watcher, err := watch.New(watchInput, watchPattern, watchSettle, logger)
	if err != nil {
		return err
	}

	process := func(file string) {
		result, err := runner.Run(ctx, blender.Invocation{
			BlendFile:   file,
			Script:      scriptAbs,
			Passthrough: batch.ExpandArgs(args, file, watchOutput),
			ExtraArgs:   extra,
			Timeout:     fileTimeout,
		})
		switch {
		case err != nil:
			fmt.Printf("[%s] %s: %v\n", statusMark(false), file, err)
			logger.Warn("Watch processing failed", zap.String("file", file), zap.Error(err))
		case !result.OK():
			fmt.Printf("[%s] %s (exit %d)\n", statusMark(false), file, result.ExitCode)
		default:
			fmt.Printf("[%s] %s (%s)\n", statusMark(true), file, result.Duration.Round(time.Millisecond))
		}
	}

	if err := watcher.Start(ctx, process); err != nil {
		return err
	}

	fmt.Printf("Watching %s for %s (settle %s); Ctrl-C to stop\n",
		watchInput, watchPattern, watchSettle)

	<-ctx.Done()
	watcher.Stop()
	fmt.Println("\nStopped")
	return nil
}
