package viewer

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"tasklog/internal/sse"
	"tasklog/internal/taskstore"
)

// watchTaskFile watches the base directory and publishes a throttled SSE
// update whenever the task file is written or replaced. The directory is
// watched rather than the file itself because the atomic save replaces the
// file by rename.
func watchTaskFile(ctx context.Context, root string, broker *sse.Broker, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != taskstore.FileName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			broker.PublishTasksUpdated()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
