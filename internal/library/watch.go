package library

import (
	"context"
	"io/fs"
	"os"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yasserzoho/Clementine/internal/song"
	"github.com/yasserzoho/Clementine/internal/tags"
)

// WatchCallbacks receives library changes detected by a watcher.
// SongChanged fires for added and re-tagged files with the stored song
// (library ID filled in); SongRemoved fires with the file path.
type WatchCallbacks struct {
	SongChanged func(s song.Song)
	SongRemoved func(path string)
}

// Watch monitors the source directories until the context is canceled,
// keeping the database current and invoking the callbacks on changes.
// Subdirectories present at start are watched recursively; directories
// created later are added as they appear.
func (l *Library) Watch(ctx context.Context, sources []string, cb WatchCallbacks, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, src := range sources {
		if err := addRecursive(watcher, src); err != nil {
			logger.Warn("cannot watch source", "path", src, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.handleEvent(watcher, event, cb, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func (l *Library) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, cb WatchCallbacks, logger *slog.Logger) {
	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		if isDir(event.Name) {
			if event.Op.Has(fsnotify.Create) {
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
		if !tags.IsSupported(event.Name) {
			return
		}
		s, err := tags.Read(event.Name)
		if err != nil {
			logger.Warn("cannot read tags", "path", event.Name, "error", err)
			return
		}
		stored, err := l.AddSongs([]song.Song{s}, []int64{mtimeOf(event.Name)})
		if err != nil {
			logger.Warn("cannot store song", "path", event.Name, "error", err)
			return
		}
		if cb.SongChanged != nil && len(stored) == 1 {
			cb.SongChanged(stored[0])
		}

	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		if !tags.IsSupported(event.Name) {
			return
		}
		if err := l.DeleteByPath(event.Name); err != nil {
			logger.Warn("cannot delete song", "path", event.Name, "error", err)
			return
		}
		if cb.SongRemoved != nil {
			cb.SongRemoved(event.Name)
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func mtimeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}
