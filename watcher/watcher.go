package watcher

import (
	"fmt"
	"log"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"photofolio/common"
	"photofolio/config"
)

// Watcher monitors the photo source folder and reruns a job when it changes
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(paths []string)

	watcher *fsnotify.Watcher
	events  chan Event

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool

	runMu sync.Mutex
}

// Event represents a file system event
type Event struct {
	Type     EventType
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

// NewWatcher creates a watcher for cfg.Prepare.SourceDir. onChange receives
// the sorted paths that changed during one debounce window.
func NewWatcher(cfg *config.Config, onChange func(paths []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	debounce := cfg.Watch.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		dir:      cfg.Prepare.SourceDir,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins monitoring the source folder
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	log.Printf("👀 Watching folder: %s", w.dir)

	go w.processEvents()
	return nil
}

// processEvents filters fsnotify events down to photo changes
func (w *Watcher) processEvents() {
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !common.HasExtension(name, common.SourceExtensions) {
				continue
			}

			var eventType EventType
			switch {
			case event.Op.Has(fsnotify.Create):
				eventType = EventCreated
			case event.Op.Has(fsnotify.Write):
				eventType = EventModified
			case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
				eventType = EventDeleted
			default:
				continue
			}

			// Drop rather than block when nobody drains the channel.
			select {
			case w.events <- Event{Type: eventType, FilePath: event.Name}:
			default:
			}

			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// schedule restarts the single debounce timer
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := slices.Sorted(maps.Keys(w.pending))
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	// One run at a time; a burst arriving mid-run waits for the next window.
	w.runMu.Lock()
	defer w.runMu.Unlock()

	log.Printf("🔄 %d photo(s) changed", len(paths))
	w.onChange(paths)
}

// Events returns the event channel. It is closed after Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher. A run already in progress is allowed to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}
