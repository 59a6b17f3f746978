package storage

import (
	"context"
	"sync"
)

// CachedLibrary remembers folder and file listings of another Library until
// they are invalidated. Open is never cached.
type CachedLibrary struct {
	Library

	mu      sync.RWMutex
	folders []string
	files   map[string][]string
}

// NewCachedLibrary wraps lib.
func NewCachedLibrary(lib Library) *CachedLibrary {
	return &CachedLibrary{Library: lib, files: make(map[string][]string)}
}

// Folders returns the cached folder list, loading it on first use.
func (c *CachedLibrary) Folders(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	folders := c.folders
	c.mu.RUnlock()
	if folders != nil {
		return append([]string(nil), folders...), nil
	}

	folders, err := c.Library.Folders(ctx)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []string{}
	}
	c.mu.Lock()
	c.folders = folders
	c.mu.Unlock()
	return append([]string(nil), folders...), nil
}

// Files returns the cached file list of folder, loading it on first use.
func (c *CachedLibrary) Files(ctx context.Context, folder string) ([]string, error) {
	c.mu.RLock()
	files, ok := c.files[folder]
	c.mu.RUnlock()
	if ok {
		return append([]string(nil), files...), nil
	}

	files, err := c.Library.Files(ctx, folder)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}
	c.mu.Lock()
	c.files[folder] = files
	c.mu.Unlock()
	return append([]string(nil), files...), nil
}

// Invalidate drops the cached file list of folder.
func (c *CachedLibrary) Invalidate(folder string) {
	c.mu.Lock()
	delete(c.files, folder)
	c.mu.Unlock()
}

// InvalidateAll drops every cached listing.
func (c *CachedLibrary) InvalidateAll() {
	c.mu.Lock()
	c.folders = nil
	c.files = make(map[string][]string)
	c.mu.Unlock()
}
