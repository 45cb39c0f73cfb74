// Package watcher re-runs the image pipeline for files that change under
// the source directories.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mindscape/config"
	"mindscape/optimizer"
)

// DefaultDebounce is how long a path must stay quiet before it is processed
const DefaultDebounce = 500 * time.Millisecond

// Pipeline is the part of the optimizer the watcher drives
type Pipeline interface {
	ProcessFile(path string) optimizer.Result
	CopySVG(path string) error
	EmitFavicons() (written, failed int)
}

// Event is emitted after a changed file has been handled
type Event struct {
	Type     EventType
	FilePath string
	Result   optimizer.Result
}

// EventType tells which pipeline handled the file
type EventType int

const (
	EventRaster EventType = iota
	EventSVG
	EventFavicon
)

func (t EventType) String() string {
	switch t {
	case EventSVG:
		return "svg"
	case EventFavicon:
		return "favicon"
	default:
		return "raster"
	}
}

// Watcher monitors the source directories. Changes are debounced per path
// and handled by a single goroutine, one file at a time.
type Watcher struct {
	cfg      *config.Config
	pipeline Pipeline
	watcher  *fsnotify.Watcher
	raster   map[string]bool
	favicon  string
	debounce time.Duration

	// faviconDir is set when the favicon lives outside every source tree;
	// only the favicon itself is handled there.
	faviconDir string

	mu     sync.Mutex
	timers map[string]*time.Timer

	pending chan string
	events  chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher creates a watcher for the configured source directories
func NewWatcher(cfg *config.Config, pipeline Pipeline) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	raster := make(map[string]bool, len(cfg.RasterExtensions))
	for _, ext := range cfg.RasterExtensions {
		raster[strings.ToLower(ext)] = true
	}

	return &Watcher{
		cfg:      cfg,
		pipeline: pipeline,
		watcher:  fsWatcher,
		raster:   raster,
		favicon:  filepath.Clean(cfg.FaviconPath()),
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
		pending:  make(chan string, 100),
		events:   make(chan Event, 100),
		done:     make(chan struct{}),
	}, nil
}

// Start adds every existing source directory and its nested directories,
// except output and hidden ones, then begins processing events.
func (w *Watcher) Start() error {
	for _, dir := range w.cfg.SourcePaths() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Debug("source directory missing, not watching", "dir", dir)
			continue
		}
		if err := w.addTree(dir); err != nil {
			return err
		}
	}

	if err := w.watchFavicon(); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.consume()

	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", path, err)
		}
		slog.Debug("watching folder", "dir", path)
		return nil
	})
}

// watchFavicon adds the favicon's folder when no source tree covers it
func (w *Watcher) watchFavicon() error {
	dir := filepath.Dir(w.favicon)
	for _, watched := range w.watcher.WatchList() {
		if filepath.Clean(watched) == dir {
			return nil
		}
	}
	if _, err := os.Stat(dir); err != nil {
		slog.Debug("favicon folder missing, not watching", "dir", dir)
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch favicon folder %s: %w", dir, err)
	}
	w.faviconDir = dir
	slog.Debug("watching favicon", "path", w.favicon)
	return nil
}

func (w *Watcher) skipDir(name string) bool {
	return name == w.cfg.OptimizedDir || name == w.cfg.PlaceholderDir || strings.HasPrefix(name, ".")
}

// kind classifies a changed path
func (w *Watcher) kind(path string) (EventType, bool) {
	if filepath.Clean(path) == w.favicon {
		return EventFavicon, true
	}
	if w.faviconDir != "" && filepath.Dir(path) == w.faviconDir {
		return 0, false
	}

	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || w.skipDir(filepath.Base(filepath.Dir(path))) {
		return 0, false
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".svg":
		return EventSVG, true
	case w.raster[ext]:
		return EventRaster, true
	default:
		return 0, false
	}
}

// processEvents turns fsnotify events into debounced work items
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.skipDir(info.Name()) && filepath.Dir(event.Name) != w.faviconDir {
						if err := w.addTree(event.Name); err != nil {
							slog.Warn("failed to watch new folder", "dir", event.Name, "error", err)
						}
					}
					continue
				}
			}

			if _, ok := w.kind(event.Name); ok {
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// schedule (re)starts the debounce timer for path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.pending <- path:
		case <-w.done:
		}
	})
}

// consume handles debounced paths strictly one after another
func (w *Watcher) consume() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case path := <-w.pending:
			event, ok := w.handle(path)
			if !ok {
				continue
			}
			select {
			case w.events <- event:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handle(path string) (Event, bool) {
	kind, ok := w.kind(path)
	if !ok {
		return Event{}, false
	}
	if _, err := os.Stat(path); err != nil {
		slog.Debug("changed file vanished before processing", "path", path)
		return Event{}, false
	}

	event := Event{Type: kind, FilePath: path}
	switch kind {
	case EventSVG:
		event.Result = optimizer.Result{Path: path, Err: w.pipeline.CopySVG(path)}
	case EventFavicon:
		event.Result = optimizer.Result{Path: path}
		if _, failed := w.pipeline.EmitFavicons(); failed > 0 {
			event.Result.Err = fmt.Errorf("%d favicon sizes failed", failed)
		}
	default:
		event.Result = w.pipeline.ProcessFile(path)
	}

	slog.Info("file changed", "path", path, "type", kind.String(), "ok", event.Result.OK())
	return event, true
}

// Events returns the channel of handled files. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop closes the fsnotify watcher and waits for in-flight work
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for path, timer := range w.timers {
			timer.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}
