// Package watch follows the logs directory and reports log file changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anurajdeol90/team-digest/internal/checksum"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/sse"
	"github.com/anurajdeol90/team-digest/internal/storage"
)

// EventCallback is called after a log file changes. kind is one of
// sse.KindCreated, sse.KindUpdated, sse.KindDeleted.
type EventCallback func(kind, path string, date time.Time)

// Watch starts an fsnotify watcher on root, the directory store is rooted at,
// and reports changes to notes-YYYY-MM-DD.md files until ctx is cancelled.
//
// Writes that leave a file's content unchanged are not reported. Rename
// events trigger a short debounced reconciliation against a fresh listing.
func Watch(ctx context.Context, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	known := snapshot(store, logger)
	logger.Info("watcher: started", slog.String("root", root), slog.Int("logs", len(known)))

	emit := func(kind, name string) {
		date, _ := digest.ParseLogName(name)
		logger.Debug("watcher: change", slog.String("path", name), slog.String("op", kind))
		if cb != nil {
			cb(kind, name, date)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			current := snapshot(store, logger)
			for name := range known {
				if _, ok := current[name]; !ok {
					emit(sse.KindDeleted, name)
				}
			}
			for name, cs := range current {
				prev, ok := known[name]
				switch {
				case !ok:
					emit(sse.KindCreated, name)
				case prev != cs:
					emit(sse.KindUpdated, name)
				}
			}
			known = current

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if _, isLog := digest.ParseLogName(name); !isLog {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", name), slog.String("error", readErr.Error()))
					continue
				}
				cs := checksum.Sum(data)
				prev, seen := known[name]
				if seen && prev == cs {
					continue
				}
				known[name] = cs
				if seen {
					emit(sse.KindUpdated, name)
				} else {
					emit(sse.KindCreated, name)
				}

			case ev.Op&fsnotify.Remove != 0:
				if _, seen := known[name]; seen {
					delete(known, name)
					emit(sse.KindDeleted, name)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new
				// name arrives as a Create if it stays in the directory.
				if _, seen := known[name]; seen {
					delete(known, name)
					emit(sse.KindDeleted, name)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// snapshot maps every log file name in the store root to its checksum.
func snapshot(store storage.Provider, logger *slog.Logger) map[string]string {
	out := make(map[string]string)
	files, err := store.List("")
	if err != nil {
		logger.Warn("watcher: list failed", slog.String("error", err.Error()))
		return out
	}
	for _, f := range files {
		if _, ok := digest.ParseLogName(f.Name); !ok {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			continue
		}
		out[f.Name] = checksum.Sum(data)
	}
	return out
}
