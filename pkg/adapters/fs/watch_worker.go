package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/marytreat/pkg/core"
)

const debounceDelay = 50 * time.Millisecond

// Watch reports changes to files matching pattern (a doublestar glob over
// slash-separated relative paths, "" meaning everything). Bursts of events on
// the same path are coalesced. The channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.recursiveAdd(watcher); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event, 16)
	w := &watchWorker{
		repo:      r,
		pattern:   pattern,
		events:    events,
		done:      make(chan struct{}),
		watcher:   watcher,
		debouncer: newDebouncer(debounceDelay),
	}
	r.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.reportError(fmt.Errorf("watcher panic: %w", err))
	}))
	return events, nil
}

// recursiveAdd registers the project folder and its subfolders, skipping
// hidden folders such as .git and the system directory.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != r.Path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (r *Repository) reportError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("watcher error", "error", err)
}

type watchWorker struct {
	repo      *Repository
	pattern   string
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer

	done   chan struct{}
	sendMu sync.RWMutex
	closed bool
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.repo.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
		w.debouncer.stopAndWait(5 * time.Second)
		w.closeEvents()
		w.repo.setWatcherActive(false)
	}()
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.repo.reportError(wErr)
		}
	}
}

func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	rel, err := filepath.Rel(w.repo.Path, event.Name)
	if err != nil {
		w.repo.config.Logger.Debug("event outside project", "path", event.Name)
		return
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
		// New folders need their own watch.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.repo.reportError(err)
			}
			return
		}
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return
	}

	w.repo.config.Logger.Debug("event received", "type", eType, "path", rel)
	w.debouncer.add(core.Event{Type: eType, Path: rel, Timestamp: time.Now().Unix()}, func(e core.Event) {
		w.send(ctx, e)
	})
}

// send delivers e unless the worker is shutting down. A delivery that
// outlives stopAndWait's timeout is dropped.
func (w *watchWorker) send(ctx context.Context, e core.Event) {
	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- e:
	case <-w.done:
	case <-ctx.Done():
	}
}

// closeEvents releases blocked senders, then closes the events channel.
func (w *watchWorker) closeEvents() {
	close(w.done)
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	w.closed = true
	close(w.events)
}

func (w *watchWorker) ignored(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if part == w.repo.config.SystemDir || part == ".git" {
			return true
		}
	}
	if w.pattern == "" {
		return false
	}
	ok, err := doublestar.Match(w.pattern, rel)
	return err != nil || !ok
}

// debouncer coalesces events per path and fires the last one after the
// path has been quiet for delay. A create followed by writes stays a create.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingEvent
	wg      sync.WaitGroup
	stopped bool
}

type pendingEvent struct {
	event core.Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
	}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[e.Path]; ok {
		if p.event.Type == core.EventCreate && e.Type == core.EventModify {
			e.Type = core.EventCreate
		}
		p.event = e
		// A timer that already fired is waiting on d.mu and will pick up
		// the merged event.
		if p.timer.Stop() {
			p.timer.Reset(d.delay)
		}
		return
	}

	p := &pendingEvent{event: e}
	d.pending[e.Path] = p
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		ev := p.event
		delete(d.pending, ev.Path)
		d.mu.Unlock()
		defer d.wg.Done()
		fire(ev)
	})
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, p := range d.pending {
		if p.timer.Stop() {
			delete(d.pending, path)
			d.wg.Done()
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
