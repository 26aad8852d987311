package catalog

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 150 * time.Millisecond

// Watcher reloads a catalog file when it changes on disk and publishes the
// result to a Store. A failed reload leaves the previous snapshot in place.
type Watcher struct {
	path     string
	store    *Store
	log      zerolog.Logger
	debounce time.Duration
	onReload func(*Catalog, error)

	fw   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadHook registers a callback invoked after every reload attempt.
func WithReloadHook(fn func(*Catalog, error)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher for the catalog at path.
func NewWatcher(path string, store *Store, log zerolog.Logger, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		store:    store,
		log:      log,
		debounce: defaultDebounce,
		fw:       fw,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches the catalog's directory; editors often replace files
// rather than writing in place, which drops a watch on the file itself.
func (w *Watcher) Start() error {
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	go w.loop()
	return nil
}

// Stop ends watching. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("catalog watcher error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadFile(w.path)
	if err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("catalog reload failed; keeping previous snapshot")
	} else {
		w.store.Publish(c)
		w.log.Info().
			Str("path", w.path).
			Int("products", c.Len()).
			Int("ingredients", len(c.Ingredients())).
			Uint64("version", w.store.Version()).
			Msg("catalog reloaded")
	}
	if w.onReload != nil {
		w.onReload(c, err)
	}
}
