package preferences

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events editors produce on save.
const debounceDelay = 100 * time.Millisecond

// Watcher reports changes to a single file. It watches the parent directory so
// editors that save through rename are still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

func NewWatcher(path string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{fsw: fsw, path: abs, callback: callback}, nil
}

// Run blocks until ctx is canceled. Watcher errors go to errFn when set.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.callback)
}

// Follow reloads the file into b whenever it changes, until ctx ends.
func Follow(ctx context.Context, b *Binder, store FileStore, onError func(error)) error {
	w, err := NewWatcher(store.Path, func() {
		if _, err := b.Load(ctx, store); err != nil && onError != nil {
			onError(err)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	w.Run(ctx, onError)
	return nil
}
