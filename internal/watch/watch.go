// Package watch keeps the in-memory view in step with edits made to the
// vault outside the application (editors, sync tools, hand edits).
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oswin/keepmd/internal/index"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/keeper"
)

// EventCallback is called after a watcher-driven change has been applied.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, id string)

// Run starts an fsnotify watcher on the vault root and the view
// subdirectories and processes change events until ctx is cancelled.
//
// External edits arrive in bursts (editors write temp files, sync tools touch
// many files), so events are debounced into one reload of the currently open
// view rather than applied file by file; the reload also re-runs the type
// repair pass, which is exactly what hand-edited files need. cb (if non-nil)
// fires per observed .md event so clients can refresh.
func Run(ctx context.Context, k *keeper.Keeper, idx index.ItemIndex, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(vaultRoot); err != nil {
		return err
	}
	for _, v := range []item.View{item.ViewArchive, item.ViewTrash} {
		dir := filepath.Join(vaultRoot, v.Dir())
		if _, statErr := os.Stat(dir); statErr == nil {
			if addErr := w.Add(dir); addErr != nil {
				logger.Warn("watcher: add dir failed",
					slog.String("path", dir),
					slog.String("error", addErr.Error()))
			}
		}
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	const debounce = 200 * time.Millisecond
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reload(ctx, k, idx, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// Archive/trash directories created at runtime join the
			// watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleReload()
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}

			id := strings.TrimSuffix(filepath.Base(ev.Name), ".md")
			switch {
			case ev.Op&fsnotify.Create != 0:
				notify(cb, "created", id)
			case ev.Op&fsnotify.Write != 0:
				notify(cb, "updated", id)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				notify(cb, "deleted", id)
			default:
				continue
			}
			scheduleReload()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func reload(ctx context.Context, k *keeper.Keeper, idx index.ItemIndex, logger *slog.Logger) {
	view := k.View()
	repaired, err := k.Load(ctx, view)
	if err != nil {
		logger.Warn("watcher: reload failed",
			slog.String("view", string(view)),
			slog.String("error", err.Error()))
		return
	}
	if idx != nil {
		if err := idx.ReplaceView(string(view), k.Items()); err != nil {
			logger.Warn("watcher: index sync failed", slog.String("error", err.Error()))
		}
	}
	logger.Debug("watcher: reloaded",
		slog.String("view", string(view)),
		slog.Int("repaired", len(repaired)))
}

func notify(cb EventCallback, kind, id string) {
	if cb == nil {
		return
	}
	cb(kind, id)
}
