// Package watch re-runs a handler when post files change on disk.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/easyblogger/internal/logfields"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called with the path of a changed file.
type Handler func(ctx context.Context, path string) error

// Watcher monitors a set of files. Handle is called serially, at most once
// per path for every burst of changes. A change that leaves a file with the
// content it had when Handle last returned is ignored, so a handler writing
// to its own file does not trigger itself.
type Watcher struct {
	Paths    []string
	Debounce time.Duration
	Handle   Handler
}

// Run watches until ctx is cancelled. Handler errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.Paths) == 0 {
		return fmt.Errorf("no files to watch")
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	// Directories are watched instead of files so that editors replacing
	// the file by rename keep being observed.
	wanted := make(map[string]bool, len(w.Paths))
	dirs := map[string]bool{}
	for _, p := range w.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		wanted[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	slog.Info("Watching files", logfields.Count(len(wanted)))

	settled := map[string][]byte{}
	ready := make(chan string, len(wanted))
	var mu sync.Mutex
	timers := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(debounce)
			return
		}
		timers[path] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !wanted[name] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("File change detected", logfields.Path(name), slog.String("op", event.Op.String()))
				schedule(name)
			} else if event.Has(fsnotify.Remove) {
				slog.Warn("Watched file removed", logfields.Path(name))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case path := <-ready:
			if prev, ok := settled[path]; ok {
				if cur, err := os.ReadFile(path); err == nil && bytes.Equal(cur, prev) {
					slog.Debug("File content unchanged, skipping", logfields.Path(path))
					continue
				}
			}
			if err := w.Handle(ctx, path); err != nil {
				slog.Error("Failed to handle change", logfields.Path(path), logfields.Error(err))
			}
			if cur, err := os.ReadFile(path); err == nil {
				settled[path] = cur
			} else {
				delete(settled, path)
			}
		}
	}
}
