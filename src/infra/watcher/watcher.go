package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contre95/ferrum/src/features/scanning"
	"github.com/fsnotify/fsnotify"
)

const DEBOUNCE_SECS = 5

// Watcher monitors the library tree for changes and emits coalesced events
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	lastEventType scanning.FileEventType
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- scanning.FileEvent
}

// NewWatcher creates a new file system watcher. A non-positive debounce falls
// back to the default.
func NewWatcher(eventChan chan<- scanning.FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DEBOUNCE_SECS * time.Second
	}

	return &Watcher{
		watcher:   watcher,
		eventChan: eventChan,
		debounce:  debounce,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the library path and its subdirectories
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.addRecursive(watchPath); err != nil {
		return err
	}

	w.running = true

	// Start the event loop
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	// Cancel any pending debounce timer
	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// addRecursive registers the directory and every directory below it
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return err
			}
		}
		return nil
	})
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories join the watch so nested additions keep arriving
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	// Check if it's a supported audio file
	if !w.isSupportedFile(event.Name) {
		return
	}

	var eventType scanning.FileEventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = scanning.FileCreated
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = scanning.FileRemoved
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = scanning.FileRemoved
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = scanning.FileModified
	default:
		return
	}

	slog.Debug("Detected library change", "file", event.Name, "type", eventType)

	// Start or reset the debounce timer
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	w.lastEventType = eventType
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.emitDebounceEvent()
	})
}

// isSupportedFile checks if the file is a supported audio format
func (w *Watcher) isSupportedFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	supportedExtensions := map[string]bool{
		".mp3":  true,
		".flac": true,
		".wav":  true,
	}
	_, supported := supportedExtensions[ext]
	return supported
}

// emitDebounceEvent emits a file event after the debounce period
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	eventType := w.lastEventType
	w.debounceMutex.Unlock()

	event := scanning.FileEvent{
		Path:      w.watchPath,
		EventType: eventType,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Emitted file event after debounce", "path", event.Path, "type", event.EventType)
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
