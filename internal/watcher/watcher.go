// Package watcher notifies when the user patterns file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/bloom/internal/log"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher monitors a single file and signals after it settles.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns the default debounce for path.
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce}
}

// New creates a watcher for cfg.Path. The file itself need not exist yet;
// its directory must.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher: empty path")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(cfg.Path),
		debounce:  cfg.Debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The returned channel receives one signal per
// settled burst of changes.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are still seen.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "Watching patterns file", "path", w.path)

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// Run calls reload after every settled change until ctx is done. Reload
// errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, reload func() error) error {
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := reload(); err != nil {
				log.ErrorErr(log.CatWatcher, "Reload failed", err, "path", w.path)
				continue
			}
			log.Info(log.CatWatcher, "Reloaded patterns", "path", w.path)
		}
	}
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "fsnotify error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
