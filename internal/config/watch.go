package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Sternrassler/hepatodb-client/pkg/logging"
)

// Watch reloads the file at path whenever it is written, created or renamed
// into place and passes every valid result to onChange. Invalid edits are
// logged and skipped. Watch blocks until ctx is done.
//
// The containing directory is watched rather than the file itself so that
// editors replacing the file atomically are noticed.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	logger := logging.NewLogger("config")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Truncation shows up as its own write event.
			if info, err := os.Stat(target); err != nil || info.Size() == 0 {
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				logger.Error().Err(err).Str("path", target).Msg("Ignoring invalid config change")
				continue
			}
			logger.Info().Str("path", target).Str("log_level", cfg.Log.Level).Msg("Config reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Config watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

// ApplyLogLevel is an onChange callback that re-applies the log level.
func ApplyLogLevel(cfg Config) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return
	}
	logging.SetLevel(level)
}
