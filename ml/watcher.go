package ml

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher reloads a Registry when its artifact file changes on disk.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	registry    *Registry
	logger      *zap.Logger
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	removed     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

func NewWatcher(registry *Registry, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:     fw,
		registry:    registry,
		logger:      logger,
		debounceDur: 300 * time.Millisecond, // writers often emit several events per save
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start watches the artifact's directory, since replacing a file by rename drops a file watch.
// It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.registry.Path())
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return errors.Wrapf(err, "watch %s", dir)
	}
	w.logger.Info("watching model artifact", zap.String("path", w.registry.Path()))

	go w.run(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing model watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("model watcher", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.registry.Path() {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.removed = event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	removed := w.removed
	w.mu.Unlock()

	if err := w.registry.Reload(); err != nil {
		if removed {
			w.logger.Warn("model artifact removed", zap.String("path", w.registry.Path()), zap.Error(err))
			return
		}
		w.logger.Error("model reload failed", zap.String("path", w.registry.Path()), zap.Error(err))
		return
	}
	w.logger.Info("model reloaded", zap.String("path", w.registry.Path()))
}
