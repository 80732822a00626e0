package bpy

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"blenderctl/internal/blender"
)

// ExecSpec describes one payload run.
type ExecSpec struct {
	Payload   Payload
	BlendFile string
	Options   any
	ExtraArgs []string
	Timeout   time.Duration
}

// Exec materializes the payload into a temp directory, runs Blender on
// it, and decodes the marker block into out (which may be nil when the
// caller only needs success/failure).
func Exec(ctx context.Context, runner *blender.Runner, spec ExecSpec, out any) (*blender.Result, error) {
	dir, err := os.MkdirTemp("", "blenderctl-payload-")
	if err != nil {
		return nil, fmt.Errorf("create payload dir: %w", err)
	}
	defer os.RemoveAll(dir)

	script, err := Materialize(spec.Payload, dir)
	if err != nil {
		return nil, err
	}

	opts, err := EncodeOptions(spec.Options)
	if err != nil {
		return nil, err
	}

	result, err := runner.Run(ctx, blender.Invocation{
		BlendFile:   spec.BlendFile,
		Script:      script,
		Passthrough: []string{opts},
		ExtraArgs:   spec.ExtraArgs,
		Timeout:     spec.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if result.Killed {
		return result, fmt.Errorf("blender %s: %s", spec.Payload, result.KillReason)
	}

	// Decode even on non-zero exit: a failing payload still reports
	// its error through the marker block when it can.
	extractErr := ExtractResult(result.Stdout, out)
	if perr, ok := extractErr.(*PayloadError); ok {
		return result, fmt.Errorf("blender %s: %s", spec.Payload, perr.Message)
	}

	if result.ExitCode != 0 {
		return result, fmt.Errorf("blender %s: exit code %d: %s",
			spec.Payload, result.ExitCode, stderrTail(result.Stderr))
	}
	if extractErr != nil {
		return result, fmt.Errorf("blender %s: %w", spec.Payload, extractErr)
	}
	return result, nil
}

// stderrTail keeps error messages readable when Blender dumps pages of
// diagnostics.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
