// Package watch re-processes blend files as they change on disk.
// Rapid successive writes to the same file (editors save in bursts)
// are debounced per file; a file is handed to the callback only after
// its settle window passes without further writes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is the per-file debounce window.
const DefaultSettle = 500 * time.Millisecond

// Watcher monitors one directory for files matching a glob pattern.
type Watcher struct {
	dir     string
	pattern string
	settle  time.Duration
	logger  *zap.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	running bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a watcher over dir for files matching pattern. settle
// <= 0 uses DefaultSettle. logger may be nil.
func New(dir, pattern string, settle time.Duration, logger *zap.Logger) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	return &Watcher{
		dir:     dir,
		pattern: pattern,
		settle:  settle,
		logger:  logger,
		watcher: fsw,
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching and invokes process for each settled file.
// Non-blocking; events flow until Stop or ctx cancellation. process is
// called from the watch goroutine, one file at a time.
func (w *Watcher) Start(ctx context.Context, process func(file string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching directory",
		zap.String("dir", w.dir),
		zap.String("pattern", w.pattern),
		zap.Duration("settle", w.settle))

	go w.run(ctx, process)
	return nil
}

// Stop halts the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("Error closing fs watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context, process func(file string)) {
	defer close(w.doneCh)

	// The ticker sweeps the pending map for files whose settle window
	// has elapsed.
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()
			w.logger.Debug("File changed", zap.String("file", event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", zap.Error(err))

		case <-ticker.C:
			for _, file := range w.takeSettled() {
				w.logger.Info("Processing settled file", zap.String("file", file))
				process(file)
			}
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, err := filepath.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// takeSettled removes and returns pending files whose last write is
// older than the settle window.
func (w *Watcher) takeSettled() []string {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	var settled []string
	for file, last := range w.pending {
		if now.Sub(last) >= w.settle {
			settled = append(settled, file)
			delete(w.pending, file)
		}
	}
	return settled
}
