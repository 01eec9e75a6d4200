package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	InitialScan bool     // emit files already present under Roots
	Debounce    time.Duration
	Logger      *slog.Logger
}

// StartWatcher emits paths of supported files that were created, written or
// renamed under cfg.Roots. Bursts of events for the same path are coalesced
// when Debounce is set. Both channels close when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("watcher.start.failed", "err", "no roots provided")
		return nil, nil, errors.New("no roots provided")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher.create.failed", "err", err)
		return nil, nil, err
	}

	var initial []string
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != root && IsHidden(path) {
					return filepath.SkipDir
				}
				return w.Add(path)
			}
			if cfg.InitialScan && Eligible(path) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("watcher.add_root.failed", "root", r, "err", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	logger.Info("watcher.started", "roots", cfg.Roots, "initial", len(initial), "debounce", cfg.Debounce)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watcher.close.failed", "err", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]struct{}{}
		var timer *time.Timer
		var fire <-chan time.Time
		flush := func() bool {
			for p := range pending {
				delete(pending, p)
				if !emit(p) {
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case <-fire:
				fire = nil
				if !flush() {
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					tryAddDir(w, e.Name, logger)
				}
				if !Eligible(e.Name) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(cfg.Debounce)
				}
				fire = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher.error", "err", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// tryAddDir watches newly created directories. Files fail the Add and are ignored.
func tryAddDir(w *fsnotify.Watcher, path string, logger *slog.Logger) {
	if IsHidden(path) {
		return
	}
	if err := w.Add(path); err == nil {
		logger.Debug("watcher.dir.added", "path", path)
	}
}
