// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reruns an action whenever scenario descriptors under a
// directory tree are added, changed or removed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bartekus/sddlite/internal/scanner"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches one directory tree. It is single use.
type Watcher struct {
	root     string
	opts     scanner.FilterOptions
	debounce time.Duration
	log      *zap.Logger

	fsw  *fsnotify.Watcher
	dirs map[string]bool
}

// New returns a Watcher for root using the default scenario filter.
func New(root string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		root:     root,
		opts:     scanner.ScenarioFilter(),
		debounce: DefaultDebounce,
		log:      log,
		dirs:     map[string]bool{},
	}
}

// WithDebounce overrides the quiet period before onChange runs.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// relevant events. Calls happen on the calling goroutine, one at a time. An
// error from onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.log.Debug("watching", zap.String("root", w.root), zap.Int("dirs", len(w.dirs)))

	var timer *time.Timer
	var fire <-chan time.Time
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
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				w.log.Error("regeneration failed", zap.Error(err))
			}
		}
	}
}

// handle updates the watched set for event and reports whether it may change
// the set of scenario descriptors.
func (w *Watcher) handle(event fsnotify.Event) bool {
	w.log.Debug("event", zap.String("path", event.Name), zap.Stringer("op", event.Op))

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("watching new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return true
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.dirs[event.Name] {
			for dir := range w.dirs {
				if dir == event.Name || isUnder(dir, event.Name) {
					delete(w.dirs, dir)
				}
			}
			return true
		}
	case event.Has(fsnotify.Write):
	default:
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	return len(scanner.FilterFiles([]string{filepath.ToSlash(rel)}, w.opts)) == 1
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != w.root {
				return nil
			}
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if w.dirs[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.dirs[path] = true
		return nil
	})
}

func (w *Watcher) excluded(name string) bool {
	for _, ex := range w.opts.ExcludeDirs {
		if name == ex {
			return true
		}
	}
	return false
}

func isUnder(path, dir string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
