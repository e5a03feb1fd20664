package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/internal/schedule"
)

// FileWatcher watches drawing files and calls back once per burst of writes
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]*schedule.Debouncer
	dirs      map[string]int
	debounce  time.Duration
	logger    *slog.Logger
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   watcher,
		callbacks: make(map[string]*schedule.Debouncer),
		dirs:      make(map[string]int),
		debounce:  debounce,
		logger:    logging.OrNop(logger),
	}, nil
}

// Watch starts watching the specified files.
// The parent directories are watched so editors that replace the file on
// save keep triggering callback.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := fw.callbacks[absPath]; ok {
			continue
		}

		dir := filepath.Dir(absPath)
		if fw.dirs[dir] == 0 {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		fw.dirs[dir]++

		path := absPath
		fw.callbacks[absPath] = schedule.NewDebouncer(fw.debounce, func() {
			callback(path)
		})
	}

	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warn("watcher error", "error", err)
			}
		}
	}()
}

// handleFileChange re-arms the debouncer of a watched file
func (fw *FileWatcher) handleFileChange(filePath string) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return
	}

	fw.mu.Lock()
	d, exists := fw.callbacks[absPath]
	fw.mu.Unlock()

	if exists {
		fw.logger.Debug("file changed", "path", absPath)
		d.Trigger()
	}
}

// Close stops the watcher and cancels pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, d := range fw.callbacks {
		d.Stop()
	}
	fw.mu.Unlock()

	return fw.watcher.Close()
}

// RemoveAll removes all watched files
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var errs []error
	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			errs = append(errs, err)
		}
	}
	for _, d := range fw.callbacks {
		d.Stop()
	}

	fw.callbacks = make(map[string]*schedule.Debouncer)
	fw.dirs = make(map[string]int)
	return errors.Join(errs...)
}
