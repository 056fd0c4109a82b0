package maintainer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the notes tree with fsnotify and schedules a regeneration
// pass whenever markdown files change outside the application (editors, git
// pulls). Events are debounced so a burst of writes triggers one rebuild.
// regen runs the pass; onRegen, if non-nil, is called after each completed
// one. Runs until ctx is cancelled.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, regen func() (Result, error), onRegen func(Result)) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			res, regenErr := regen()
			if regenErr != nil {
				logger.Error("watcher: regeneration failed", slog.String("error", regenErr.Error()))
				continue
			}
			if onRegen != nil {
				onRegen(res)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories (e.g. a fresh project) join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					_ = addDirsRecursive(w, ev.Name)
					schedule()
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			logger.Debug("watcher: change detected",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
