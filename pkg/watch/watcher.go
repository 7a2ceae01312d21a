// Package watch re-runs a job when source files change.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of events (editor saves, branch switches)
// into a single run.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Extensions restricts the files that trigger a run, with leading dot.
	// Empty means every file.
	Extensions []string
	// Filters skips every path whose root-relative form contains one of
	// these substrings.
	Filters []string
	// Debounce is the quiet period before a run. Zero selects DefaultDebounce.
	Debounce time.Duration
}

// ChangeFunc receives the sorted set of files changed since the last run.
type ChangeFunc func(changed []string)

// Watcher watches source trees and calls a ChangeFunc after changes settle.
//
// Usage:
//
//	w, err := watch.New(func(changed []string) { tool.Check(ctx, target) }, opts, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(target.Roots...); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeFunc
	options  Options
	logger   *slog.Logger
	roots    []string

	// Pending changes and the debounce timer.
	pending map[string]struct{}
	timer   *time.Timer
	pendMu  sync.Mutex

	// Serializes ChangeFunc calls.
	runMu sync.Mutex
	runs  atomic.Int64

	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a watcher that calls onChange.
func New(onChange ChangeFunc, options Options, logger *slog.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("change callback is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:  watcher,
		onChange: onChange,
		options:  options,
		logger:   logger,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches every directory under roots and begins delivering changes.
// It may be called once.
func (w *Watcher) Start(roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.started {
		return errors.New("watcher already started")
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("invalid root %s: %w", root, err)
		}
		w.roots = append(w.roots, abs)
	}
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return err
		}
	}

	w.started = true
	go w.eventLoop()

	w.logger.Info("file watcher started", "roots", w.roots)
	return nil
}

// addTree watches root and its subdirectories, skipping filtered ones.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops watching. Pending changes are dropped. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.pendMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
	w.pendMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	// New directories are watched as they appear; files created inside
	// them before the watch is added are picked up by the next run.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.relevant(path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.schedule(path)
}

// schedule records path and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendMu.Lock()
	defer w.pendMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.fire)
}

func (w *Watcher) fire() {
	w.pendMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.pendMu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.runs.Add(1)
	w.logger.Debug("running after changes", "files", len(changed))
	w.onChange(changed)
}

// relevant reports whether a change to path should trigger a run.
func (w *Watcher) relevant(path string) bool {
	if len(w.options.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.options.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ignored applies the substring filters to the root-relative path.
func (w *Watcher) ignored(path string) bool {
	rel := w.relative(path)
	for _, filter := range w.options.Filters {
		if filter != "" && strings.Contains(rel, filter) {
			return true
		}
	}
	return false
}

func (w *Watcher) relative(path string) string {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

// Stats reports watcher state.
func (w *Watcher) Stats() Stats {
	w.pendMu.Lock()
	pending := len(w.pending)
	w.pendMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{PendingChanges: pending, Runs: int(w.runs.Load()), IsRunning: running}
}

// Stats contains watcher statistics.
type Stats struct {
	PendingChanges int
	Runs           int
	IsRunning      bool
}
