// Package watch refreshes the browser when the directory on screen changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kk-code-lab/arangr/internal/logging"
)

// DefaultDebounce coalesces bursts of events (editors saving, archive
// extraction) into a single refresh.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches one directory at a time, non-recursively, and calls
// onChange once per burst of events inside it.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(dir string)
	debounce time.Duration
	log      *logging.Logger

	mu     sync.Mutex
	dir    string
	timer  *time.Timer
	closed bool
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

// New creates a Watcher. Nothing is watched until Watch is called.
func New(onChange func(dir string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      logging.Get("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch retargets the watcher at dir, dropping the previous directory. A
// pending refresh for the previous directory is discarded.
func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || absDir == w.dir {
		return nil
	}
	if w.dir != "" {
		_ = w.watcher.Remove(w.dir)
	}
	w.stopTimerLocked()
	w.dir = ""

	if err := w.watcher.Add(absDir); err != nil {
		w.log.Warn("failed to add watch", "path", absDir, "error", err)
		return err
	}
	w.dir = absDir
	w.log.Debug("watching", "path", absDir)
	return nil
}

// Dir returns the directory currently watched.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Run starts the event loop. It blocks until ctx is cancelled or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
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
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.dir == "" || filepath.Dir(event.Name) != w.dir {
		return
	}

	dir := w.dir
	w.stopTimerLocked()
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current := w.dir
		closed := w.closed
		w.timer = nil
		w.mu.Unlock()

		if closed || current != dir || w.onChange == nil {
			return
		}
		w.onChange(dir)
	})
}

func (w *Watcher) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.stopTimerLocked()
	w.dir = ""
	return w.watcher.Close()
}
