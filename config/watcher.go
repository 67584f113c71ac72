package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is invoked with the previous and newly-loaded
// configuration whenever the watched file changes.
type ChangeCallback func(old, new *Config)

// Watcher hot-reloads a configuration file via fsnotify. Reloads only
// ever affect the Config a caller fetches after the reload via Current —
// any MailboxFactory already built from a prior Config is untouched, so
// the "fails eagerly at construction" guarantee still applies to
// whichever mailbox is being built at the moment a reload lands.
type Watcher struct {
	path   string
	loader *Loader

	mu      sync.RWMutex
	current *Config

	callbacksMu sync.Mutex
	callbacks   []ChangeCallback

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
}

// NewWatcher loads path once via loader and begins watching it for
// subsequent writes.
func NewWatcher(path string, loader *Loader) (*Watcher, error) {
	cfg, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: starting file watcher: %w", err)
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}

	w := &Watcher{
		path:      path,
		loader:    loader,
		current:   cfg,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Current returns the most recently successfully loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.callbacksMu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.callbacksMu.Unlock()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	next, err := w.loader.LoadFromFile(w.path)
	if err != nil {
		// A malformed reload is ignored — the prior, valid Config stays
		// current rather than handing out an invalid one.
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = next
	w.mu.Unlock()

	w.callbacksMu.Lock()
	callbacks := append([]ChangeCallback(nil), w.callbacks...)
	w.callbacksMu.Unlock()
	for _, cb := range callbacks {
		cb(old, next)
	}
}

// Close stops the watcher's background goroutine and releases the
// underlying file-system watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}
