// blenderctl drives Blender in headless/batch mode: locating the
// executable, invoking it with scripts or expressions, converting
// between 3D formats, inspecting and mutating scenes, rendering
// frames, and introspecting the live bpy API. All domain work happens
// inside Blender; this binary marshals parameters, invokes the
// subprocess, and formats results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blenderctl/internal/blender"
	"blenderctl/internal/config"
)

var (
	// Global flags
	verbose     bool
	blenderFlag string
	configFlag  string
	timeoutFlag time.Duration

	// Set by PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blenderctl",
	Short: "Drive Blender in headless/batch mode",
	Long: `blenderctl is a command-line driver for headless Blender.

It locates the Blender executable (--blender flag, BLENDER_EXE, config
file, well-known install paths, then $PATH), runs it as a subprocess
with embedded Python payloads, and formats the results as text or JSON.

Format conversion, rendering, scene inspection and mutation, and live
bpy API introspection all execute inside Blender itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotenv()

		var err error
		cfg, err = config.Load(configFlag)
		if err != nil {
			return err
		}

		zapCfg := zap.NewProductionConfig()
		if verbose || cfg.Logging.Level == "debug" {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&blenderFlag, "blender", "", "Path to Blender executable (overrides BLENDER_EXE)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: .blenderctl.yaml, ~/.blenderctl.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "Per-invocation timeout (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext returns a context cancelled on SIGINT/SIGTERM. This
// is process-level shutdown only; batch workers are otherwise
// independent of each other.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newRunner resolves the Blender executable and wraps it in a runner
// carrying the configured timeout and output cap.
func newRunner() (*blender.Runner, error) {
	exe, _, err := blender.NewLocator(blenderFlag, cfg.Blender.Executable, logger).Resolve()
	if err != nil {
		return nil, err
	}
	return blender.NewRunner(exe, invocationTimeout(), cfg.Blender.MaxOutputBytes, logger), nil
}

func invocationTimeout() time.Duration {
	if timeoutFlag > 0 {
		return timeoutFlag
	}
	return cfg.GetDefaultTimeout()
}

// baseExtraArgs parses the configured extra_args string into Blender
// argv tokens. Per-command --extra-args values append to these.
func baseExtraArgs() ([]string, error) {
	if cfg.Blender.ExtraArgs == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(cfg.Blender.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("parse blender.extra_args: %w", err)
	}
	return args, nil
}

// combinedExtraArgs joins config-level and flag-level extra Blender
// arguments.
func combinedExtraArgs(flagValue string) ([]string, error) {
	args, err := baseExtraArgs()
	if err != nil {
		return nil, err
	}
	if flagValue == "" {
		return args, nil
	}
	extra, err := shellwords.Parse(flagValue)
	if err != nil {
		return nil, fmt.Errorf("parse --extra-args: %w", err)
	}
	return append(args, extra...), nil
}
