package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler is called after the watched file settles.
type Handler func(ctx context.Context) error

type Config struct {
	Path       string
	Debounce   time.Duration
	Attempts   uint
	RetryDelay time.Duration
}

func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		Debounce:   300 * time.Millisecond,
		Attempts:   3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Watcher calls a Handler whenever one file changes. It watches the file's
// directory so that editors replacing the file by rename are noticed too.
type Watcher struct {
	config    Config
	path      string
	fsWatcher *fsnotify.Watcher
	handler   Handler
	log       *zap.Logger
}

func New(config Config, handler Handler, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("couldn't watch %s: %w", config.Path, err)
	}
	return &Watcher{
		config:    config,
		path:      path,
		fsWatcher: fsWatcher,
		handler:   handler,
		log:       log,
	}, nil
}

// Run blocks until ctx is cancelled. Handler failures are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	w.log.Info("watching for changes", zap.String("path", w.path))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			w.trigger(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// trigger retries the handler because editors often write a file in more
// than one step and the first read can see it half written.
func (w *Watcher) trigger(ctx context.Context) {
	err := retry.Do(
		func() error { return w.handler(ctx) },
		retry.Context(ctx),
		retry.Attempts(w.config.Attempts),
		retry.Delay(w.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.log.Debug("retrying after change", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil && ctx.Err() == nil {
		w.log.Warn("update failed", zap.String("path", w.path), zap.Error(err))
	}
}
