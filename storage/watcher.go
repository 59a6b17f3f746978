package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"songshelf/logger"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is told which cached listings became stale.
type Invalidator interface {
	Invalidate(folder string)
	InvalidateAll()
}

// WatchLocal watches the library root and each folder directory and
// invalidates cached listings on changes until ctx is done.
func WatchLocal(ctx context.Context, lib *LocalLibrary, cache Invalidator) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	root, err := filepath.Abs(lib.Root)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to resolve music directory: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	addFolderWatches(ctx, watcher, lib)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				handleEvent(ctx, watcher, lib, root, cache, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Music directory watcher error", logger.ErrorField(err))
			}
		}
	}()

	logger.Info("Watching music directory", logger.String("root", root))
	return nil
}

func handleEvent(ctx context.Context, watcher *fsnotify.Watcher, lib *LocalLibrary, root string, cache Invalidator, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	dir := filepath.Dir(event.Name)
	if dir == root {
		// A folder was added, removed or renamed.
		cache.InvalidateAll()
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("Failed to watch folder", logger.String("folder", event.Name), logger.ErrorField(err))
				}
			}
		}
		logger.Debug("Music folders changed", logger.String("path", event.Name))
		return
	}

	if filepath.Dir(dir) == root {
		folder := filepath.Base(dir)
		cache.Invalidate(folder)
		logger.Debug("Music folder changed",
			logger.String("folder", folder), logger.String("op", event.Op.String()))
	}
}

func addFolderWatches(ctx context.Context, watcher *fsnotify.Watcher, lib *LocalLibrary) {
	folders, err := lib.Folders(ctx)
	if err != nil {
		logger.Warn("Failed to list folders for watching", logger.ErrorField(err))
		return
	}
	for _, folder := range folders {
		p, err := filepath.Abs(filepath.Join(lib.Root, folder))
		if err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			logger.Warn("Failed to watch folder", logger.String("folder", p), logger.ErrorField(err))
		}
	}
}
