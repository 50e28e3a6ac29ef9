package runner

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/offstage/offstage/internal/loader"
)

// WatchScript reloads the script document whenever it changes on disk,
// until the context is cancelled. A reload that fails to parse or
// validate is logged and skipped; the running script stays in effect.
func (r *Runner) WatchScript(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	r.logger.Info("watching script", "path", path)

	// Editors often emit several write events per save; debounce them.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(250 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watch error", "error", err)
		case <-pending:
			pending = nil
			r.reload(path)
		}
	}
}

func (r *Runner) reload(path string) {
	content, err := loader.LoadFile(path)
	if err != nil {
		r.logger.Error("script reload failed", "path", path, "error", err)
		return
	}
	if errs := loader.Validate(r.kernel.Registry(), content); len(errs) > 0 {
		r.logger.Error("script reload rejected",
			"path", path, "problems", len(errs), "first", errs[0].Error())
		return
	}
	r.SetContent(content)
	r.logger.Info("script reloaded", "path", path)
}
