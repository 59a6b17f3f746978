package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/go-test/deep"
)

// countingLibrary counts listing calls of the wrapped library.
type countingLibrary struct {
	Library
	folderCalls int
	fileCalls   int
}

func (c *countingLibrary) Folders(ctx context.Context) ([]string, error) {
	c.folderCalls++
	return c.Library.Folders(ctx)
}

func (c *countingLibrary) Files(ctx context.Context, folder string) ([]string, error) {
	c.fileCalls++
	return c.Library.Files(ctx, folder)
}

func TestCachedLibrary(t *testing.T) {
	local := newTestLibrary(t, map[string][]string{"Rock": {"a.mp3"}})
	counting := &countingLibrary{Library: local}
	cached := NewCachedLibrary(counting)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.Folders(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := cached.Files(ctx, "Rock"); err != nil {
			t.Fatal(err)
		}
	}
	if counting.folderCalls != 1 || counting.fileCalls != 1 {
		t.Fatalf("listings not cached: folders=%d files=%d", counting.folderCalls, counting.fileCalls)
	}

	// Callers may modify what they get back.
	files, _ := cached.Files(ctx, "Rock")
	files[0] = "changed"

	if err := os.WriteFile(filepath.Join(local.Root, "Rock", "b.mp3"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	files, _ = cached.Files(ctx, "Rock")
	if diff := deep.Equal(files, []string{"a.mp3"}); diff != nil {
		t.Fatal(diff)
	}

	cached.Invalidate("Rock")
	files, _ = cached.Files(ctx, "Rock")
	if diff := deep.Equal(files, []string{"a.mp3", "b.mp3"}); diff != nil {
		t.Fatal(diff)
	}

	cached.InvalidateAll()
	if _, err := cached.Folders(ctx); err != nil {
		t.Fatal(err)
	}
	if counting.folderCalls != 2 {
		t.Fatalf("folders not reloaded after InvalidateAll: %d", counting.folderCalls)
	}
}

func TestCachedLibraryErrorsNotCached(t *testing.T) {
	counting := &countingLibrary{Library: newTestLibrary(t, nil)}
	cached := NewCachedLibrary(counting)
	for i := 0; i < 2; i++ {
		if _, err := cached.Files(context.Background(), "Missing"); err == nil {
			t.Fatal("expected error")
		}
	}
	if counting.fileCalls != 2 {
		t.Fatalf("errors must not be cached, calls=%d", counting.fileCalls)
	}
}

// recordingInvalidator records invalidations.
type recordingInvalidator struct {
	folders []string
	all     int
}

func (r *recordingInvalidator) Invalidate(folder string) { r.folders = append(r.folders, folder) }
func (r *recordingInvalidator) InvalidateAll()           { r.all++ }

func TestHandleEvent(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"Rock": {"a.mp3"}})
	root, err := filepath.Abs(lib.Root)
	if err != nil {
		t.Fatal(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()
	ctx := context.Background()

	rec := &recordingInvalidator{}
	handleEvent(ctx, watcher, lib, root, rec, fsnotify.Event{Name: filepath.Join(root, "Rock", "b.mp3"), Op: fsnotify.Create})
	handleEvent(ctx, watcher, lib, root, rec, fsnotify.Event{Name: filepath.Join(root, "Rock", "a.mp3"), Op: fsnotify.Chmod})
	if diff := deep.Equal(rec.folders, []string{"Rock"}); diff != nil {
		t.Fatal(diff)
	}
	if rec.all != 0 {
		t.Fatal("file event must not drop every listing")
	}

	jazz := filepath.Join(root, "Jazz")
	if err := os.Mkdir(jazz, 0755); err != nil {
		t.Fatal(err)
	}
	handleEvent(ctx, watcher, lib, root, rec, fsnotify.Event{Name: jazz, Op: fsnotify.Create})
	if rec.all != 1 {
		t.Fatalf("folder event must drop every listing, got %d", rec.all)
	}

	watched := false
	for _, p := range watcher.WatchList() {
		if p == jazz {
			watched = true
		}
	}
	if !watched {
		t.Fatal("new folder not watched")
	}
}
