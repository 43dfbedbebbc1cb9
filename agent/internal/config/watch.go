package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the bursts of events a single save produces.
var reloadDelay = 250 * time.Millisecond

// Watch reloads the config at path whenever its content changes and hands
// the new Config to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched so saves that replace the file by rename
// are seen. A reload that fails to parse or validate is logged and the
// previous config stays active; saving identical content is ignored.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	applied, _ := digest(target)
	slog.Info("config: watching for changes", "path", target)

	var pending <-chan time.Time
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
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(reloadDelay)
			}

		case <-pending:
			pending = nil
			sum, err := digest(target)
			if err != nil {
				slog.Warn("config: cannot read changed file", "path", target, "err", err)
				continue
			}
			if sum == applied {
				slog.Debug("config: content unchanged, skipping reload", "path", target)
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", target, "err", err)
				continue
			}
			applied = sum
			slog.Info("config: reloaded", "path", target, "resources", len(cfg.EnabledKinds()))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func digest(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
