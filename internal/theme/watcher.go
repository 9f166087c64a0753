// internal/theme/watcher.go
package theme

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bethropolis/shade/internal/logger"
)

// Watcher hot-reloads theme files: writes to .toml files in the manager's
// theme directory re-parse the file and, if it backs the active theme, take
// effect immediately (dispatching a theme changed event).
type Watcher struct {
	manager *Manager
	fsw     *fsnotify.Watcher

	// pending coalesces event bursts per file; fired timers remove their
	// own entry.
	mu      sync.Mutex
	pending map[string]*time.Timer

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher starts watching the manager's theme directory. Returns an
// error if the directory cannot be watched.
func NewWatcher(manager *Manager) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(manager.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		manager: manager,
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	go w.loop()
	logger.Debugf("Theme watcher started on '%s'", manager.Dir())
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(ev.Name), ".toml") {
				continue
			}
			w.schedule(filepath.Clean(ev.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warnf("Theme watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// schedule coalesces event bursts per file: editors fire several events per
// save, and only the last one within the settle window triggers a reload.
// The timer callback removes its own pending entry, so the map stays bounded
// by the number of files currently settling.
func (w *Watcher) schedule(path string) {
	const settle = 100 * time.Millisecond

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(settle)
		return
	}
	w.pending[path] = time.AfterFunc(settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.manager.reloadFile(path)
	})
}

func (w *Watcher) pendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
