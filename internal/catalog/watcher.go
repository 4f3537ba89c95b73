package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/skyroute/internal/checksum"
)

// reloadDebounce collapses the burst of events an editor or a copy
// produces into a single reload.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the catalog whenever the dataset file at path is written,
// created, renamed over or removed and recreated. It watches the parent
// directory so atomic replace-by-rename is seen. Rewrites that leave the
// content unchanged do not reload. Watch blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return err
	}

	last, _ := checksum.File(abs)
	c.logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			c.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			sum, err := checksum.File(abs)
			if err == nil && sum == last {
				c.logger.Debug("watcher: dataset unchanged")
				continue
			}
			if err := c.Reload(ctx); err != nil {
				c.logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			last = sum

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			c.logger.Debug("watcher: dataset changed", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
