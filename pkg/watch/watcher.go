// Package watch re-triggers ingestion when source documents change.
//
// The watcher is deliberately thin: it detects changes to *.yml / *.yaml
// files in a single directory, debounces bursts, and invokes a full
// re-ingestion callback. No incremental re-ingestion contract exists.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultCooldown is the quiet period between a change burst and the
// re-ingestion it triggers.
const DefaultCooldown = 1500 * time.Millisecond

// sourcePattern matches the files whose changes trigger re-ingestion.
const sourcePattern = "*.{yml,yaml}"

// Watcher observes a source directory and re-runs ingestion on change.
type Watcher struct {
	*worker.BaseWorker
	dir       string
	cooldown  time.Duration
	onChange  func(context.Context) error
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithCooldown overrides the debounce quiet period.
func WithCooldown(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.cooldown = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher over dir. onChange runs once at startup (first-run
// reconciliation) and then after every debounced change burst; its errors
// are logged, never fatal to the watch loop.
func New(dir string, onChange func(context.Context) error, opts ...Option) *Watcher {
	w := &Watcher{
		BaseWorker: worker.NewBaseWorker("source-watcher"),
		dir:        dir,
		cooldown:   DefaultCooldown,
		onChange:   onChange,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It performs the initial ingestion synchronously so
// the graph reflects the directory before any change event arrives.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	w.logger.Info("running initial ingestion", "dir", w.dir)
	if err := w.onChange(ctx); err != nil {
		w.logger.Error("initial ingestion failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.cooldown)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.logger.Info("watching source directory", "dir", w.dir)
	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

// Stop cancels the watch loop and waits for it to wind down.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

// State implements worker state export.
func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", panicErr)
			}
		}
	}()
	defer w.watcher.Close()

	err = w.loop(ctx)
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *Watcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isSourceEvent(event) {
		return
	}

	w.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())

	w.debouncer.trigger(func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("source changed, re-ingesting", "dir", w.dir)
		if err := w.reingest(ctx); err != nil {
			// The watch loop must survive ingestion failures.
			w.logger.Error("re-ingestion failed", "error", err)
		}
	})
}

func (w *Watcher) reingest(ctx context.Context) (err error) {
	done := make(chan struct{})
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(done)
		err = w.onChange(ctx)
		return err
	}, lifecycle.WithErrorHandler(func(panicErr error) {
		w.logger.Error("re-ingestion panic", "error", panicErr)
	}))
	<-done
	return err
}

func isSourceEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ok, err := doublestar.Match(sourcePattern, filepath.Base(event.Name))
	return err == nil && ok
}
