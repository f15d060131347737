package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/safecity/safecity/pkg/logger"
	"github.com/safecity/safecity/pkg/metrics"
)

const defaultDebounce = 2 * time.Second

// Watcher observes the data paths and emits a debounced signal when any
// of them change, so a burst of writes (e.g. copying a new extract in)
// triggers a single reload.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   logger.Logger
	fw       *fsnotify.Watcher

	// C receives one value per settled burst of file changes.
	C chan struct{}
}

// WatcherOption applies a configuration option to the Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long changes must settle before a signal fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets a custom logger for the watcher.
func WithWatcherLogger(lg logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if lg != nil {
			w.logger = lg
		}
	}
}

// NewWatcher creates a watcher over the given paths.
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	w := &Watcher{
		paths:    paths,
		debounce: defaultDebounce,
		fw:       fw,
		C:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("watcher")
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("%w: watch %s: %w", ErrLoadFailed, p, err)
		}
	}
	return w, nil
}

// Run pumps fsnotify events into debounced signals until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			metrics.RecordWatcherEvent()
			w.logger.Debug(ctx, "data file changed",
				logger.String("path", ev.Name),
				logger.String("op", ev.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			metrics.RecordWatcherError()
			w.logger.Warn(ctx, "watcher error", logger.Error(err))
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.C <- struct{}{}:
			default: // a reload is already pending
			}
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}
