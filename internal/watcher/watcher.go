// Package watcher watches theme directories and reports debounced
// change events. The serve command uses it to invalidate the
// resolver's existence cache and to drive live reload.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// EventType represents the type of file change event.
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
	EventRenamed
)

// String returns a human-readable string for the event type.
func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is one debounced file change.
type Event struct {
	Type EventType
	Path string
}

// Handler is called for each debounced change event.
type Handler func(Event)

// Watcher watches directories recursively with debounce and glob
// ignore patterns.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ignore   []glob.Glob

	handlers []Handler
	mu       sync.RWMutex

	events    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	pending   map[string]*time.Timer
	pendingMu sync.Mutex
}

// Option configures the watcher.
type Option func(*Watcher) error

// WithDebounce sets the debounce duration. Multiple events for the
// same path within the window coalesce into one.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		w.debounce = d
		return nil
	}
}

// WithIgnore adds glob patterns for paths to skip. Patterns use '/'
// as the separator, e.g. "**/.git/**".
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return fmt.Errorf("compiling ignore pattern %q: %w", pattern, err)
			}
			w.ignore = append(w.ignore, g)
		}
		return nil
	}
}

// New creates a watcher. Call Add for each root, then Start.
func New(opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		debounce: 100 * time.Millisecond,
		events:   make(chan Event, 100),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// Add watches a directory and all its subdirectories.
func (w *Watcher) Add(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// OnChange registers a handler for debounced change events.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Start begins watching until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(2)

	go func() {
		defer w.wg.Done()
		w.processLoop(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.dispatchLoop(ctx)
	}()
}

// Stop stops the watcher and waits for its loops to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreated
		// New directories need to be watched too.
		w.maybeWatchDir(event.Name)
	case event.Op&fsnotify.Write != 0:
		eventType = EventModified
	case event.Op&fsnotify.Remove != 0:
		eventType = EventDeleted
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRenamed
	default:
		return
	}

	changeEvent := Event{Type: eventType, Path: event.Name}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, exists := w.pending[event.Name]; exists {
		timer.Stop()
	}

	w.pending[event.Name] = time.AfterFunc(w.debounce, func() {
		w.pendingMu.Lock()
		delete(w.pending, event.Name)
		w.pendingMu.Unlock()

		select {
		case w.events <- changeEvent:
		default:
			log.Warn().Str("path", event.Name).Msg("Event channel full, dropping event")
		}
	})
}

func (w *Watcher) maybeWatchDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to watch new directory")
	}
}

func (w *Watcher) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event := <-w.events:
			log.Debug().
				Str("path", event.Path).
				Str("type", event.Type.String()).
				Msg("Theme change detected")

			w.mu.RLock()
			handlers := make([]Handler, len(w.handlers))
			copy(handlers, w.handlers)
			w.mu.RUnlock()

			for _, h := range handlers {
				h(event)
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, g := range w.ignore {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}
