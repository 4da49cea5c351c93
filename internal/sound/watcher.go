package sound

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// AssetWatcher watches the bundled sound directory and invalidates
// cached buffers when an asset file is replaced on disk, so a changed
// sound is picked up without restarting.
type AssetWatcher struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	cache   *BufferCache
	dir     string
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewAssetWatcher creates a watcher over the given sound directory.
func NewAssetWatcher(cache *BufferCache, dir string, logger *slog.Logger) (*AssetWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	return &AssetWatcher{
		logger:  logger,
		watcher: watcher,
		cache:   cache,
		dir:     dir,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the sound directory.
func (w *AssetWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.watch()
	w.logger.Debug("asset watcher started", "dir", w.dir)
	return nil
}

// watch is the main watch loop.
func (w *AssetWatcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			name := filepath.Base(event.Name)
			key := strings.TrimSuffix(name, filepath.Ext(name))
			if key == "" {
				continue
			}

			w.logger.Debug("sound asset changed, invalidating cache",
				"file", name, "key", key, "op", event.Op.String())
			w.cache.Invalidate(key)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("asset watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops watching and releases the watcher.
func (w *AssetWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("failed to close fs watcher", "error", err)
	}
	w.logger.Debug("asset watcher stopped")
}
