package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk. It watches the
// parent directory so editors that replace the file by rename are seen.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	changes chan Config
}

func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:    filepath.Clean(path),
		logger:  logger,
		watcher: fw,
		changes: make(chan Config, 1),
	}, nil
}

// Changes delivers each successfully reloaded, normalized config. A slow
// reader only ever sees the latest one.
func (w *Watcher) Changes() <-chan Config {
	return w.changes
}

// Run processes file events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	defer close(w.changes)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping current settings", "error", err)
		return
	}
	for _, msg := range cfg.Normalize() {
		w.logger.Warn("config value replaced", "detail", msg)
	}
	w.logger.Info("config reloaded", "path", w.path)

	// Drop a pending config nobody has read yet.
	select {
	case <-w.changes:
	default:
	}
	w.changes <- cfg
}
