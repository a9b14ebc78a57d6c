package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch validates source once and again after every write to it, until ctx
// is cancelled. The parent directory is watched so editors that replace the
// file on save are still picked up.
func (r *runner) watch(ctx context.Context, source string) error {
	target, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", source, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	r.runOnce(ctx, source)
	r.logger.WithField("file", target).Info("Watching manifest for changes")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopped watching manifest")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(event.Name) != target {
				continue
			}
			r.logger.WithField("op", event.Op.String()).Debug("Manifest changed")
			r.runOnce(ctx, source)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.WithError(err).Warn("Watcher error")
		}
	}
}

// runOnce runs a pass and logs its outcome instead of returning it, so a bad
// edit does not end the watch.
func (r *runner) runOnce(ctx context.Context, source string) {
	err := r.run(ctx, source)
	switch {
	case err == nil:
		r.logger.Info("Manifest is valid")
	case errors.Is(err, ErrValidationFailed):
		r.logger.Warn("Manifest has validation failures")
	default:
		r.logger.WithError(err).Error("Manifest check failed")
	}
}
