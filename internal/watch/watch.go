// Package watch reruns generation whenever files below a directory change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gorewood/rustme/internal/logfields"
)

// DefaultDebounce is how long the tree must be quiet before a rerun.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one generation and returns the paths it wrote. Events
// on those paths do not trigger another run.
type RunFunc func(ctx context.Context) ([]string, error)

// Watcher monitors a directory tree and calls a RunFunc, debounced, after
// changes. Runs never overlap.
type Watcher struct {
	root     string
	run      RunFunc
	debounce time.Duration
	logger   *slog.Logger
	skipDirs map[string]bool
	written  map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New returns a Watcher for root.
func New(root string, run RunFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		run:      run,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		skipDirs: map[string]bool{".git": true, "target": true, "node_modules": true},
		written:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run performs an initial run, then reruns after every burst of changes
// until ctx is cancelled. Failed runs are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	w.logger.Info("watching for changes", slog.String("dir", w.root))

	w.regenerate(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := w.addTree(fsw, event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", logfields.Error(err))
					}
				}
			}
			w.logger.Debug("change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.regenerate(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) regenerate(ctx context.Context) {
	start := time.Now()
	written, err := w.run(ctx)
	if err != nil {
		w.logger.Error("generation failed", logfields.Error(err))
		return
	}
	for _, path := range written {
		if abs, absErr := filepath.Abs(path); absErr == nil {
			w.written[abs] = true
		}
	}
	w.logger.Info("generation complete", slog.Int("files", len(written)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}

// relevant filters out our own output, temp files, and skipped directories.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".rustme-") && strings.HasSuffix(base, ".tmp") {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && w.written[abs] {
		return false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.skipDirs[part] {
			return false
		}
	}
	return true
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
