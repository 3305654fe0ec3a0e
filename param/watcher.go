package param

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/nodemesh/logging"
)

// ChangeCallback is invoked after a reloaded parameter file has been applied
// to the store. It receives the full parameter set of the file.
type ChangeCallback func(params []Parameter)

// Watcher hot-reloads a YAML parameter file into a Store. Every reload is
// applied with SetAtomically so readers never observe a torn file. A file
// revision that fails to parse is skipped; the store keeps the last good set.
type Watcher struct {
	path   string
	store  *Store
	logger logging.Logger

	mu        sync.Mutex
	callbacks []ChangeCallback

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWatcher constructs a watcher for the given parameter file and target
// store. A nil logger is replaced by a no-op logger.
func NewWatcher(path string, store *Store, logger logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Watcher{path: path, store: store, logger: logger}
}

// OnChange registers a callback fired after each successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start performs an initial load, then watches the file for changes until
// Stop is called. The containing directory is watched rather than the file
// itself so editors that replace the file (rename+create) keep triggering
// reloads.
func (w *Watcher) Start() error {
	if err := w.reload(); err != nil {
		return fmt.Errorf("initial parameter load: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("watch parameter file dir: %w", err)
	}

	w.fsWatcher = fsWatcher
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends watching. It is safe to call once after a successful Start.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.reload(); err != nil {
				w.logger.Warn("parameter file reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("parameter file watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() error {
	params, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.store.SetAtomically(params...)
	w.logger.Debug("parameter file applied", "path", w.path, "count", len(params))

	w.mu.Lock()
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()
	for _, cb := range callbacks {
		cb(params)
	}
	return nil
}
