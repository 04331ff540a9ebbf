// Package watch re-runs a snapshot whenever files under the root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"aisnap/pkg/ignore"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 250 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Root     string          // Directory tree to watch.
	Matcher  *ignore.Matcher // Events on paths it rejects are ignored; nil accepts all.
	Exclude  []string        // Files whose events never trigger a rebuild, e.g. the output file.
	Debounce time.Duration   // Defaults to DefaultDebounce.
}

// Watcher turns filesystem events into serialized, debounced rebuilds.
type Watcher struct {
	cfg       Config
	fsWatcher *fsnotify.Watcher
	exclude   map[string]bool
	logger    *zap.Logger
}

// New creates a Watcher and registers every directory under cfg.Root.
func New(cfg Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	cfg.Root = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:       cfg,
		fsWatcher: fsw,
		exclude:   make(map[string]bool, len(cfg.Exclude)),
		logger:    logger,
	}
	for _, p := range cfg.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			w.exclude[abs] = true
		}
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is done, calling rebuild after each burst of relevant
// events. Rebuild errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, rebuild func() error) error {
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("directory", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("Change detected", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("fsnotify error", zap.Error(err))

		case <-timer.C:
			if err := rebuild(); err != nil {
				w.logger.Error("Rebuild failed", zap.Error(err))
			}
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// relevant reports whether an event should trigger a rebuild.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil || w.exclude[abs] {
		return false
	}

	rel, err := filepath.Rel(w.cfg.Root, abs)
	if err != nil || rel == "." {
		return false
	}
	return w.cfg.Matcher.Includes(filepath.ToSlash(rel))
}

// addTree watches dir and all directories below it, without following symlinks.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path while registering watches", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.Debug("Watching directory", zap.String("directory", path))
		return nil
	})
}
