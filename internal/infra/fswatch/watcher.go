package fswatch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before callbacks run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher runs callbacks when watched files are written or replaced.
type Watcher struct {
	fsw      *fsnotify.Watcher
	log      *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	targets map[string]*target // by cleaned absolute path
	dirs    map[string]struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// target is one watched file.
type target struct {
	callbacks []func(path string)
	pending   *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce sets the quiet period. Zero runs callbacks on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a Watcher. Call Start to begin delivering events.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fswatch: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		log:      slog.Default(),
		debounce: DefaultDebounce,
		targets:  make(map[string]*target),
		dirs:     make(map[string]struct{}),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("component", "fswatch")
	return w, nil
}

// Watch calls fn with path after each write or replacement of path. The
// file may not exist yet but its directory must.
func (w *Watcher) Watch(path string, fn func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("fswatch: resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; !ok {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("fswatch: watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	t := w.targets[abs]
	if t == nil {
		t = &target{}
		w.targets[abs] = t
	}
	t.callbacks = append(t.callbacks, fn)

	w.log.Debug("watching file", "path", abs)
	return nil
}

// Start delivers events in a new goroutine until Stop.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.changed(filepath.Clean(ev.Name), ev.Op)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// changed schedules the callbacks of path, restarting the quiet period of
// a schedule already pending.
func (w *Watcher) changed(path string, op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t := w.targets[path]
	if t == nil {
		return
	}
	w.log.Debug("watched file changed", "path", path, "op", op.String())

	switch {
	case w.debounce <= 0:
		go w.run(path)
	case t.pending != nil:
		t.pending.Reset(w.debounce)
	default:
		t.pending = time.AfterFunc(w.debounce, func() {
			w.mu.Lock()
			t.pending = nil
			w.mu.Unlock()
			w.run(path)
		})
	}
}

func (w *Watcher) run(path string) {
	select {
	case <-w.stop:
		return
	default:
	}

	w.mu.Lock()
	callbacks := slices.Clone(w.targets[path].callbacks)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(path)
	}
}

// Stop ends event delivery and drops pending callbacks. Calls after the
// first return nil.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)

		w.mu.Lock()
		for _, t := range w.targets {
			if t.pending != nil {
				t.pending.Stop()
				t.pending = nil
			}
		}
		w.mu.Unlock()

		err = w.fsw.Close()
	})
	return err
}
