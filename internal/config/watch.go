package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives a freshly loaded config, or the error that prevented loading it.
type ReloadFunc func(Config, error)

// debounceWindow collapses editor write bursts into one reload.
const debounceWindow = 150 * time.Millisecond

// Watch reloads path whenever it is written, created or renamed into place and
// passes the result to onReload. It blocks until ctx is done. The parent
// directory is watched so editors that replace the file atomically are seen.
func Watch(ctx context.Context, path string, defaults Config, onReload ReloadFunc) error {
	if onReload == nil {
		return fmt.Errorf("watch config: reload callback is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			cfg, err := Load(target, defaults)
			onReload(cfg, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onReload(Config{}, fmt.Errorf("config watcher: %w", err))
		}
	}
}
