package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/franz/score-stand/internal/meta"
	"github.com/franz/score-stand/internal/pathutil"
	"github.com/franz/score-stand/internal/store"
	"github.com/franz/score-stand/internal/util"
)

// DefaultDebounce is how long the watcher waits for a file to settle
// before indexing it. Copies onto network shares arrive as long bursts
// of write events.
const DefaultDebounce = 500 * time.Millisecond

// Watcher keeps the catalog in sync while the stand is running. It
// watches every directory under the library root, indexes changed
// PDFs, and drops rows for files that disappear.
type Watcher struct {
	store *store.Store
	root  string

	watcher *fsnotify.Watcher
	pending *debouncer
}

// WatchConfig holds watcher configuration
type WatchConfig struct {
	Store    *store.Store
	Root     string
	Debounce time.Duration
}

// NewWatcher sets up a recursive watch over the library root. Call Run
// to start processing events and Close to tear the watch down.
func NewWatcher(cfg *WatchConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		store:   cfg.Store,
		root:    cfg.Root,
		watcher: fsw,
	}
	w.pending = newDebouncer(debounce, w.indexFile)

	dirs, err := w.watchTree(cfg.Root, false)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	util.InfoLog("Watching library: %s (%d directories)", cfg.Root, dirs)

	return w, nil
}

// Run processes filesystem events until the context is cancelled or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.pending.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("Watch error: %v", err)
		}
	}
}

// Close stops the underlying filesystem watch
func (w *Watcher) Close() error {
	w.pending.Stop()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New directory: watch it and index anything already inside
			if _, err := w.watchTree(event.Name, true); err != nil {
				util.WarnLog("Failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
		if IsScoreFile(event.Name) {
			w.pending.Trigger(event.Name)
		}

	case event.Has(fsnotify.Write):
		if IsScoreFile(event.Name) {
			w.pending.Trigger(event.Name)
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename delivers the old name here; the new name arrives as
		// a separate create event.
		w.handleGone(event.Name)
	}
}

// indexFile parses one PDF and upserts its catalog row. Fired by the
// debouncer once a burst of events has settled.
func (w *Watcher) indexFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Gone again before the debounce fired
		w.handleGone(path)
		return
	}

	parsed := meta.ParseScore(w.root, path)
	row := &store.Score{
		Path:      pathutil.ToPortable(path),
		FileKey:   util.FileKeyFromInfo(info),
		Filename:  parsed.Filename,
		Composer:  parsed.Composer,
		Title:     parsed.Title,
		Tags:      parsed.Tags,
		SizeBytes: info.Size(),
		MtimeUnix: info.ModTime().Unix(),
	}

	if err := w.store.UpsertScore(row); err != nil {
		util.ErrorLog("Failed to index %s: %v", path, err)
		return
	}
	util.InfoLog("Indexed: %s (%s / %s)", path, parsed.Composer, parsed.Title)
}

// handleGone removes catalog rows for a deleted path. The path may
// have been a file or a whole directory; a directory's files get no
// events of their own.
func (w *Watcher) handleGone(name string) {
	portable := pathutil.ToPortable(name)

	if IsScoreFile(name) {
		if err := w.store.DeleteScore(portable); err != nil {
			util.ErrorLog("Failed to drop %s: %v", name, err)
			return
		}
		util.InfoLog("Removed: %s", name)
		return
	}

	n, err := w.store.DeleteScoresUnder(portable)
	if err != nil {
		util.ErrorLog("Failed to drop scores under %s: %v", name, err)
		return
	}
	if n > 0 {
		util.InfoLog("Removed %d scores under %s", n, name)
	}
}

// watchTree adds dir and every directory below it to the watch set.
// With indexFiles set it also queues PDFs found along the way, for
// directories that appear fully populated (moves, archive extraction).
func (w *Watcher) watchTree(dir string, indexFiles bool) (int, error) {
	var dirs int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			dirs++
			return nil
		}
		if indexFiles && IsScoreFile(path) {
			w.pending.Trigger(path)
		}
		return nil
	})
	return dirs, err
}

// debouncer coalesces bursts of events per path and fires once a path
// has been quiet for the configured delay.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	fire   func(path string)
	timers map[string]*time.Timer
	closed bool
}

func newDebouncer(delay time.Duration, fire func(string)) *debouncer {
	return &debouncer{
		delay:  delay,
		fire:   fire,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger schedules a fire for path, replacing any pending one
func (d *debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		closed := d.closed
		d.mu.Unlock()
		if !closed {
			d.fire(path)
		}
	})
}

// Stop cancels all pending fires
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
