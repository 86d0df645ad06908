// Package watch reloads the document when the file is changed by another program.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before reloading.
const DefaultDebounce = 300 * time.Millisecond

// Reloader is the part of the document the watcher drives.
type Reloader interface {
	Path() string
	ReloadIfChanged(ctx context.Context) (bool, error)
}

// Watcher reloads a Reloader after its file settles.
type Watcher struct {
	target   Reloader
	debounce time.Duration
	logger   *slog.Logger
	onReload func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithOnReload registers a callback run after each reload that changed the document.
func WithOnReload(fn func()) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a Watcher for target.
func New(target Reloader, opts ...Option) *Watcher {
	w := &Watcher{
		target:   target,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. The parent directory is watched rather than
// the file so that atomic replacements (rename over the file) are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	path := filepath.Clean(w.target.Path())
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	w.logger.Info("Watching document", "path", path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "err", err)
		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	changed, err := w.target.ReloadIfChanged(ctx)
	if err != nil {
		w.logger.Error("Reload after external change failed, keeping previous document", "path", w.target.Path(), "err", err)
		return
	}
	if !changed {
		return
	}
	w.logger.Info("Document reloaded after external change", "path", w.target.Path())
	if w.onReload != nil {
		w.onReload()
	}
}
