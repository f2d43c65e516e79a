// Package watcher notices when the catwalk database file disappears underneath
// a running process.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long a removal must stand before onLost fires.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls onLost once when the store file, or its directory, is removed
// or renamed away. The parent directory is watched because fsnotify cannot
// follow a path that no longer exists.
type Watcher struct {
	target   string
	parent   string
	onLost   func(path string)
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	fired   bool
	timer   *time.Timer
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for the database file at path.
func New(path string, onLost func(path string), opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watcher: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		target:   abs,
		parent:   filepath.Dir(abs),
		onLost:   onLost,
		debounce: DefaultDebounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.target
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.fsw.Add(w.parent); err != nil {
		w.mu.Unlock()
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	w.mu.Unlock()

	log.Debug().Str("path", w.target).Msg("Watching database file")
	go w.loop(ctx)
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.fsw.Close()
	}
	w.running = false
	w.cancel()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	gone := ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0

	switch {
	case gone && (name == w.target || name == w.parent):
		log.Warn().Str("path", name).Str("op", ev.Op.String()).Msg("Database file removed")
		w.arm()
	case name == w.target && ev.Op&fsnotify.Create != 0:
		w.disarm()
	}
}

func (w *Watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fired || !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil && w.timer.Stop() {
		log.Info().Str("path", w.target).Msg("Database file recreated, ignoring removal")
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.fired || !w.running {
		w.mu.Unlock()
		return
	}
	if _, err := os.Stat(w.target); err == nil {
		w.mu.Unlock()
		log.Info().Str("path", w.target).Msg("Database file is back, ignoring removal")
		return
	}
	w.fired = true
	w.mu.Unlock()

	if w.onLost != nil {
		w.onLost(w.target)
	}
}
