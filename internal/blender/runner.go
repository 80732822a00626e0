package blender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Invocation describes one headless Blender run.
type Invocation struct {
	// BlendFile is opened on the Blender command line before any script
	// runs. Optional.
	BlendFile string

	// Script is a Python file passed via --python. Mutually exclusive
	// with Expr.
	Script string

	// Expr is a Python expression passed via --python-expr.
	Expr string

	// Passthrough arguments appended after "--" for the script to parse.
	Passthrough []string

	// ExtraArgs are additional Blender arguments inserted before the
	// script flags (e.g. --factory-startup).
	ExtraArgs []string

	// WorkingDir is the subprocess working directory. Empty means inherit.
	WorkingDir string

	// Timeout bounds the run. Zero means the runner default.
	Timeout time.Duration

	// Stream, when set, receives stdout as it is produced in addition to
	// the captured copy. Used by interactive commands.
	Stream io.Writer
}

// Result is the outcome of one Blender invocation. One process, one
// Result; nothing is shared across invocations.
type Result struct {
	// ExitCode is the process exit code, -1 if the process never ran.
	ExitCode int `json:"exit_code"`

	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`

	// Killed indicates the process was terminated by timeout or cancel.
	Killed     bool   `json:"killed"`
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates captured output hit the size cap.
	Truncated bool `json:"truncated"`
}

// OK reports whether the process ran to completion with exit code zero.
func (r *Result) OK() bool {
	return !r.Killed && r.ExitCode == 0
}

// Runner invokes a resolved Blender executable.
type Runner struct {
	exe            string
	defaultTimeout time.Duration
	maxOutputBytes int64
	logger         *zap.Logger
}

// NewRunner creates a Runner for the given executable path. logger may
// be nil.
func NewRunner(exe string, defaultTimeout time.Duration, maxOutputBytes int64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Minute
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = 10 * 1024 * 1024
	}
	return &Runner{
		exe:            exe,
		defaultTimeout: defaultTimeout,
		maxOutputBytes: maxOutputBytes,
		logger:         logger,
	}
}

// Executable returns the resolved Blender path this runner invokes.
func (r *Runner) Executable() string {
	return r.exe
}

// Argv builds the full Blender argument list for an invocation,
// excluding the executable itself. -b puts Blender in background mode.
func (r *Runner) Argv(inv Invocation) []string {
	args := []string{"-b"}
	if inv.BlendFile != "" {
		args = append(args, inv.BlendFile)
	}
	args = append(args, inv.ExtraArgs...)

	switch {
	case inv.Expr != "":
		args = append(args, "--python-expr", inv.Expr)
	case inv.Script != "":
		args = append(args, "--python", inv.Script)
	}

	if len(inv.Passthrough) > 0 {
		args = append(args, "--")
		args = append(args, inv.Passthrough...)
	}
	return args
}

// Run executes one Blender invocation to completion.
//
// A nil error with a non-zero Result.ExitCode means Blender ran and
// failed; an error return means the subprocess infrastructure failed
// (executable unrunnable, etc).
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Script != "" && inv.Expr != "" {
		return nil, fmt.Errorf("invocation has both a script and an expression")
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.Argv(inv)
	r.logger.Debug("Invoking Blender",
		zap.String("exe", r.exe),
		zap.Strings("args", args),
		zap.Duration("timeout", timeout))

	cmd := exec.CommandContext(execCtx, r.exe, args...)
	cmd.Dir = inv.WorkingDir

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: r.maxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: r.maxOutputBytes}

	if inv.Stream != nil {
		cmd.Stdout = io.MultiWriter(stdoutLimited, inv.Stream)
	} else {
		cmd.Stdout = stdoutLimited
	}
	cmd.Stderr = stderrLimited

	result := &Result{ExitCode: -1}
	result.StartedAt = time.Now()

	err := cmd.Run()

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()
	result.Truncated = stdoutLimited.truncated || stderrLimited.truncated
	if result.Truncated {
		r.logger.Warn("Blender output truncated",
			zap.Int64("discarded", stdoutLimited.discarded+stderrLimited.discarded))
	}

	if err != nil {
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			result.Killed = true
			result.KillReason = fmt.Sprintf("timeout after %s", timeout)
			r.logger.Warn("Blender killed on timeout", zap.Duration("timeout", timeout))
			return result, nil
		case execCtx.Err() == context.Canceled:
			result.Killed = true
			result.KillReason = "canceled"
			r.logger.Debug("Blender invocation canceled")
			return result, nil
		default:
			if exitErr, ok := err.(*exec.ExitError); ok {
				// Blender ran and returned non-zero. Not an
				// infrastructure failure.
				result.ExitCode = exitErr.ExitCode()
				r.logger.Debug("Blender exited non-zero", zap.Int("exit_code", result.ExitCode))
				return result, nil
			}
			return result, fmt.Errorf("run %s: %w", r.exe, err)
		}
	}

	result.ExitCode = 0
	r.logger.Debug("Blender invocation complete",
		zap.Duration("duration", result.Duration),
		zap.Int("stdout_bytes", len(result.Stdout)))
	return result, nil
}

// limitedWriter caps total bytes written, discarding the rest while
// reporting full writes to avoid short-write errors from the copier.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
