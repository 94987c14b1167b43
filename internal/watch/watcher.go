package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a source tree recursively and fires a callback
// (through a debouncer) when source files change.
type Watcher struct {
	dir      string
	include  []string
	debounce *Debouncer
	inner    *fsnotify.Watcher
}

// NewWatcher creates a recursive watcher over dir. include holds the
// base-name glob patterns identifying source files.
func NewWatcher(dir string, include []string, debounce *Debouncer) (*Watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{dir: dir, include: include, debounce: debounce, inner: inner}
	if err := w.addRecursive(dir); err != nil {
		_ = inner.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
			return filepath.SkipDir
		}
		return w.inner.Add(path)
	})
}

func (w *Watcher) matches(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range w.include {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Run processes events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.inner.Close() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inner.Events:
			if !ok {
				return nil
			}
			// New directories need their own watches before anything in
			// them can be seen.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if w.matches(event.Name) && event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Source change detected", "path", event.Name, "op", event.Op.String())
				w.debounce.Trigger()
			}
		case err, ok := <-w.inner.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}
