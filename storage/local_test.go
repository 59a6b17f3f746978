package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
)

// newTestLibrary lays out root/<folder>/<file> with the file name as content.
func newTestLibrary(t *testing.T, layout map[string][]string) *LocalLibrary {
	t.Helper()
	root := t.TempDir()
	for folder, files := range layout {
		dir := filepath.Join(root, folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		for _, f := range files {
			if err := os.WriteFile(filepath.Join(dir, f), []byte(f), 0644); err != nil {
				t.Fatal(err)
			}
		}
	}
	lib, err := NewLocalLibrary(root)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

func TestLocalLibraryFolders(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{
		"Rock":    {"a.mp3"},
		"Jazz":    nil,
		".hidden": nil,
		"Custom":  {"x.mp3"},
	})
	if err := os.WriteFile(filepath.Join(lib.Root, "stray.mp3"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	folders, err := lib.Folders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(folders, []string{"Jazz", "Rock"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestLocalLibraryFiles(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{
		"Rock": {"b.mp3", "A.MP3", "cover.jpg", ".c.mp3", "d.flac"},
		"Jazz": nil,
	})
	ctx := context.Background()

	files, err := lib.Files(ctx, "Rock")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(files, []string{"A.MP3", "b.mp3", "d.flac"}); diff != nil {
		t.Fatal(diff)
	}

	files, err = lib.Files(ctx, "Jazz")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}

	if _, err := lib.Files(ctx, "Metal"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, bad := range []string{"..", "../Rock", "a/b", ""} {
		if _, err := lib.Files(ctx, bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Files(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
}

func TestLocalLibraryOpen(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"Rock": {"Song Two.MP3", "notes.txt"}})
	ctx := context.Background()

	obj, err := lib.Open(ctx, "Rock", "Song Two.MP3")
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Song Two.MP3" || obj.Size != int64(len(data)) {
		t.Fatalf("unexpected object %q size %d", data, obj.Size)
	}

	if _, err := lib.Open(ctx, "Rock", "missing.mp3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := lib.Open(ctx, "Rock", "notes.txt"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := lib.Open(ctx, "Rock", "../Rock/Song Two.MP3"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.mp3":  "audio/mpeg",
		"a.MP3":  "audio/mpeg",
		"a.flac": "audio/flac",
		"a.m4a":  "audio/mp4",
		"a.bin":  "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
