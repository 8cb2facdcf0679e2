package treesync

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 2 * time.Second

type WatcherOptions struct {
	Debounce time.Duration
	Logger   Logger
}

// Watcher re-runs a push whenever the content tree changes. Events are
// debounced so a burst of saves triggers a single push.
type Watcher struct {
	pusher   *Pusher
	root     string
	debounce time.Duration
	logger   Logger
}

func NewWatcher(pusher *Pusher, opts WatcherOptions) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		pusher:   pusher,
		root:     pusher.root,
		debounce: debounce,
		logger:   opts.Logger,
	}
}

// Run blocks until the context is cancelled. The root and every first-level
// directory are watched; directories created while running are added on the
// fly.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := fw.Add(filepath.Join(w.root, entry.Name())); err != nil {
				return err
			}
		}
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchDir(fw, event.Name)
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logf("watch error: %v", err)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.logf("change detected, pushing")
			if err := w.pusher.Run(ctx); err != nil {
				w.logf("push failed: %v", err)
			}
		}
	}
}

// maybeWatchDir registers newly created first-level directories so edits to
// their pages are seen.
func (w *Watcher) maybeWatchDir(fw *fsnotify.Watcher, path string) {
	if filepath.Dir(path) != filepath.Clean(w.root) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fw.Add(path); err != nil {
		w.logf("watch %s: %v", path, err)
	}
}

func (w *Watcher) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
