// Package watcher reacts to files being saved below a directory. Events
// are debounced into batches, filtered to supported, non-excluded files and
// handed to a Handler. Saves caused by the handler's own writes are
// recognized and dropped, so a rewrite never triggers itself.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codemakerai/codemaker-cli/internal/exclude"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// Handler acts on a batch of saved files. Batches are delivered one at a
// time.
type Handler func(ctx context.Context, paths []string)

type Config struct {
	Debounce time.Duration
	MaxBatch int
	// Ignore holds doublestar globs relative to the watched root.
	Ignore      []string
	AutoExclude bool
}

func DefaultConfig() Config {
	return Config{
		Debounce:    500 * time.Millisecond,
		MaxBatch:    100,
		AutoExclude: true,
	}
}

type Watcher struct {
	config    Config
	root      string
	matcher   *exclude.Matcher
	fsWatcher *fsnotify.Watcher
	fsMu      sync.Mutex
	debouncer *Debouncer
	writes    *Writes
	handler   Handler
	handleMu  sync.Mutex
	log       *slog.Logger

	ctxMu sync.RWMutex
	ctx   context.Context
}

// New creates a watcher for the tree at root. writes may be nil, in which
// case no save is treated as self-inflicted.
func New(root string, config Config, writes *Writes, handler Handler, log *slog.Logger) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	matcher, err := exclude.NewMatcher(root, config.Ignore, config.AutoExclude)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		config:    config,
		root:      root,
		matcher:   matcher,
		fsWatcher: fsWatcher,
		writes:    writes,
		handler:   handler,
		log:       log,
		ctx:       context.Background(),
	}
	w.debouncer = NewDebouncer(config.Debounce, config.MaxBatch, w.onFlush)
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run watches until ctx is done. Pending events are discarded on exit.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctxMu.Lock()
	w.ctx = ctx
	w.ctxMu.Unlock()

	defer w.close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.log.Info("watching", "root", w.root, "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) close() {
	w.debouncer.Stop()

	w.fsMu.Lock()
	defer w.fsMu.Unlock()
	if err := w.fsWatcher.Close(); err != nil {
		w.log.Debug("closing fs watcher", "error", err)
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.log.Debug("file event", "path", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.matcher.SkipDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Debug("failed to watch directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if fe, ok := convert(event, time.Now()); ok && w.relevant(fe.Path) {
		w.debouncer.Add(fe)
		w.log.Debug("queued", "path", fe.Path, "type", fe.Type.String(), "pending", w.debouncer.Pending())
	}
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	if err := w.add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if w.matcher.SkipDir(sub) {
			continue
		}
		if err := w.addTree(sub); err != nil {
			w.log.Debug("failed to watch directory", "path", sub, "error", err)
		}
	}
	return nil
}

func (w *Watcher) add(path string) error {
	w.fsMu.Lock()
	defer w.fsMu.Unlock()
	return w.fsWatcher.Add(path)
}

func (w *Watcher) relevant(path string) bool {
	return parser.IsSupported(path) && !w.matcher.SkipFile(path)
}

func (w *Watcher) runContext() context.Context {
	w.ctxMu.RLock()
	defer w.ctxMu.RUnlock()
	return w.ctx
}

func (w *Watcher) onFlush(events []FileEvent) {
	ctx := w.runContext()
	if ctx.Err() != nil {
		return
	}

	paths := w.saved(events)
	if len(paths) == 0 {
		return
	}

	w.handleMu.Lock()
	defer w.handleMu.Unlock()

	w.log.Info("files saved", "count", len(paths))
	w.handler(ctx, paths)
}

// saved returns the paths of events that left new content behind, dropping
// deletions and the watcher's own writes.
func (w *Watcher) saved(events []FileEvent) []string {
	var paths []string
	for _, event := range events {
		if !event.Saved() {
			continue
		}
		content, err := os.ReadFile(event.Path)
		if err != nil {
			continue
		}
		if w.writes != nil {
			own, err := w.writes.Own(event.Path, content)
			if err != nil {
				w.log.Debug("write lookup failed", "path", event.Path, "error", err)
			}
			if own {
				w.log.Debug("ignoring own write", "path", event.Path)
				continue
			}
		}
		paths = append(paths, event.Path)
	}
	return paths
}
