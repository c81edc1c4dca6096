package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before the cache is invalidated
const DefaultDebounce = 2 * time.Second

// Invalidator drops cached scan results
type Invalidator interface {
	Clear() error
}

// FileWatcher clears the scan cache when model or migration files change
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	dirs     []string
	debounce time.Duration
	target   Invalidator

	stopOnce sync.Once
	stopChan chan struct{}
	eventsMu sync.Mutex
	timer    *time.Timer
}

// New creates a watcher over the given directories, relative to root
func New(root string, dirs []string, debounce time.Duration, target Invalidator) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		watcher:  w,
		root:     root,
		dirs:     dirs,
		debounce: debounce,
		target:   target,
		stopChan: make(chan struct{}),
	}, nil
}

// Start registers every directory below the watched dirs and begins the
// event loop. Missing directories are logged and skipped.
func (fw *FileWatcher) Start() {
	for _, dir := range fw.dirs {
		base := filepath.Join(fw.root, filepath.FromSlash(dir))
		err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if err := fw.watcher.Add(path); err != nil {
					log.Printf("[WARN] Unable to watch %s: %v", path, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Error walking %s for watcher setup: %v", base, err)
		}
	}

	log.Printf("[INFO] Watcher started for %s", fw.root)
	go fw.watchLoop()
}

func (fw *FileWatcher) watchLoop() {
	defer fw.watcher.Close()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.watcher.Add(event.Name); err != nil {
						log.Printf("[WARN] Unable to watch new dir %s: %v", event.Name, err)
					}
				}
			}

			fw.triggerDebouncedClear()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] Watcher error: %v", err)

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) triggerDebouncedClear() {
	fw.eventsMu.Lock()
	defer fw.eventsMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
	}

	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case <-fw.stopChan:
			return
		default:
		}
		if err := fw.target.Clear(); err != nil {
			log.Printf("[ERROR] Failed to clear scan cache: %v", err)
			return
		}
		log.Printf("[INFO] Changes detected in %s, scan cache cleared", fw.root)
	})
}

// Stop ends the event loop. It is safe to call more than once.
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopChan)

		fw.eventsMu.Lock()
		if fw.timer != nil {
			fw.timer.Stop()
		}
		fw.eventsMu.Unlock()
	})
}
