// Package batch fans one script out over a set of .blend files, each
// in its own Blender subprocess. Workers share nothing; results are
// collected as they finish with no ordering guarantee, and one file's
// failure never stops the others.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blenderctl/internal/blender"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	File     string        `json:"file"`
	ExitCode int           `json:"exit_code"`
	OK       bool          `json:"ok"`
	Duration time.Duration `json:"duration"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Report aggregates a whole batch run.
type Report struct {
	RunID    string       `json:"run_id"`
	Script   string       `json:"script"`
	Pattern  string       `json:"pattern"`
	Results  []FileResult `json:"results"`
	Success  int          `json:"success"`
	Failed   int          `json:"failed"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
}

// AnyFailed reports whether any file in the batch failed.
func (r *Report) AnyFailed() bool {
	return r.Failed > 0
}

// Pool runs batch jobs with bounded parallelism.
type Pool struct {
	runner  *blender.Runner
	workers int
	logger  *zap.Logger

	// OnResult, when set, is called from worker goroutines as each
	// file finishes. Callers needing ordering must synchronize.
	OnResult func(FileResult)
}

// NewPool creates a pool. workers < 1 is treated as 1. logger may be
// nil.
func NewPool(runner *blender.Runner, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{runner: runner, workers: workers, logger: logger}
}

// Glob expands pattern under dir and returns the sorted file list. An
// empty match set is an error: a batch over nothing is almost always a
// mistyped pattern.
func Glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files matching %q in %s", pattern, dir)
	}
	sort.Strings(matches)
	return matches, nil
}

// ExpandArgs substitutes the per-file placeholders in script arguments:
// {output} becomes outputDir/<basename of file>, {stem} the file's
// name without extension.
func ExpandArgs(args []string, file, outputDir string) []string {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	out := make([]string, len(args))
	for i, arg := range args {
		if outputDir != "" {
			arg = strings.ReplaceAll(arg, "{output}", filepath.Join(outputDir, base))
		}
		arg = strings.ReplaceAll(arg, "{stem}", stem)
		out[i] = arg
	}
	return out
}

// Process runs build(file) for every file through the worker pool and
// returns the aggregate report. Worker errors are per-file data, never
// group failures; ctx cancellation is the only thing that stops the
// batch early.
func (p *Pool) Process(ctx context.Context, script string, pattern string, files []string, build func(file string) blender.Invocation) *Report {
	report := &Report{
		RunID:   uuid.NewString(),
		Script:  script,
		Pattern: pattern,
		Started: time.Now(),
	}

	p.logger.Info("Starting batch run",
		zap.String("run_id", report.RunID),
		zap.Int("files", len(files)),
		zap.Int("workers", p.workers))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			fr := p.processOne(gctx, file, build)

			mu.Lock()
			report.Results = append(report.Results, fr)
			if fr.OK {
				report.Success++
			} else {
				report.Failed++
			}
			mu.Unlock()

			if p.OnResult != nil {
				p.OnResult(fr)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	report.Finished = time.Now()
	p.logger.Info("Batch run complete",
		zap.String("run_id", report.RunID),
		zap.Int("success", report.Success),
		zap.Int("failed", report.Failed))
	return report
}

func (p *Pool) processOne(ctx context.Context, file string, build func(file string) blender.Invocation) FileResult {
	fr := FileResult{File: file, ExitCode: -1}

	result, err := p.runner.Run(ctx, build(file))
	if err != nil {
		fr.Error = err.Error()
		p.logger.Warn("Batch file failed to run", zap.String("file", file), zap.Error(err))
		return fr
	}

	fr.ExitCode = result.ExitCode
	fr.Duration = result.Duration
	fr.Stdout = result.Stdout
	fr.Stderr = result.Stderr
	if result.Killed {
		fr.Error = result.KillReason
		return fr
	}
	fr.OK = result.ExitCode == 0
	return fr
}
