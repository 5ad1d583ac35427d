// Package watch re-runs a callback when watched files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are delivered.
const DefaultDebounce = 200 * time.Millisecond

// ErrNoFiles is returned when there is nothing to watch.
var ErrNoFiles = errors.New("no files to watch")

// Watcher delivers debounced change notifications for a fixed set of files.
// Editors often save by rename, so the parent directories are watched and
// events are filtered by path.
type Watcher struct {
	inner    *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger
	// pending is only touched from the Run goroutine.
	pending map[string]struct{}
}

// New creates a Watcher for files. A non-positive debounce uses DefaultDebounce.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if logger == nil {
		logger = slog.Default()
	}

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		inner:    inner,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})

	for _, file := range files {
		abs, absErr := filepath.Abs(file)
		if absErr != nil {
			return nil, errors.Join(fmt.Errorf("resolve %s: %w", file, absErr), inner.Close())
		}

		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		addErr := inner.Add(dir)
		if addErr != nil {
			return nil, errors.Join(fmt.Errorf("watch %s: %w", dir, addErr), inner.Close())
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange with the sorted
// absolute paths that changed during each debounce window.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer func() {
		_ = w.inner.Close()
	}()

	fire := make(chan struct{}, 1)

	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.inner.Events:
			if !ok {
				return nil
			}

			if !w.record(event) {
				continue
			}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			if changed := w.drain(); len(changed) > 0 {
				onChange(changed)
			}

		case err, ok := <-w.inner.Errors:
			if !ok {
				return nil
			}

			w.logger.WarnContext(ctx, "file watcher error", "error", err)
		}
	}
}

func (w *Watcher) record(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	if _, ok := w.files[path]; !ok {
		return false
	}

	w.pending[path] = struct{}{}

	return true
}

func (w *Watcher) drain() []string {
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}

	clear(w.pending)
	slices.Sort(changed)

	return changed
}
