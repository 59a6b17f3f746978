package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"songshelf/model"

	"github.com/go-test/deep"
)

var testTracks = []model.Track{
	{File: "Song One.mp3", Name: "Song One", Folder: "Rock"},
	{File: "日本.mp3", Name: "日本", Folder: "J-Pop"},
}

func TestEncodeTracksFormat(t *testing.T) {
	data, err := EncodeTracks(testTracks[:1])
	if err != nil {
		t.Fatal(err)
	}
	const expect = `[{"file":"Song One.mp3","name":"Song One","folder":"Rock"}]`
	if string(data) != expect {
		t.Fatalf("got %s, want %s", data, expect)
	}

	data, err = EncodeTracks(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Fatalf("nil list encoded as %s", data)
	}
}

func TestDecodeTracks(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		expect  []model.Track
		wantErr bool
	}{
		{"empty", "", []model.Track{}, false},
		{"null", "null", []model.Track{}, false},
		{"empty array", "[]", []model.Track{}, false},
		{"one", `[{"file":"a.mp3","name":"a","folder":"Pop"}]`, []model.Track{{File: "a.mp3", Name: "a", Folder: "Pop"}}, false},
		{"corrupt", `[{"file":`, nil, true},
		{"not an array", `{"file":"a.mp3"}`, nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tracks, err := DecodeTracks([]byte(test.data))
			if test.wantErr {
				if !errors.Is(err, ErrCorrupt) {
					t.Fatalf("expected ErrCorrupt, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(tracks, test.expect); diff != nil {
				t.Fatal(diff)
			}
		})
	}
}

func TestOwnerKey(t *testing.T) {
	key, err := OwnerKey("6f1c2a4e-0b7d-4f7e-9a57-4b8f3e2d1c00")
	if err != nil {
		t.Fatal(err)
	}
	if key != "customPlaylist:6f1c2a4e-0b7d-4f7e-9a57-4b8f3e2d1c00" {
		t.Fatalf("unexpected key %q", key)
	}

	for _, owner := range []string{"", "../etc", "a b", "a:b"} {
		if _, err := OwnerKey(owner); !errors.Is(err, ErrInvalidOwner) {
			t.Errorf("OwnerKey(%q): expected ErrInvalidOwner, got %v", owner, err)
		}
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomPlaylistRepository()

	tracks, err := repo.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected empty list, got %v", tracks)
	}

	if err := repo.SaveCustom(ctx, "alice", testTracks); err != nil {
		t.Fatal(err)
	}
	tracks, err = repo.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(tracks, testTracks); diff != nil {
		t.Fatal(diff)
	}

	other, err := repo.LoadCustom(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatal("owners must not share playlists")
	}

	if err := repo.SetRaw("alice", []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadCustom(ctx, "alice"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for corrupt entry, got %v", err)
	}
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	repo, err := NewFileCustomPlaylistRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	tracks, err := repo.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 0 {
		t.Fatalf("missing file must be an empty list, got %v", tracks)
	}

	if err := repo.SaveCustom(ctx, "alice", testTracks); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveCustom(ctx, "alice", testTracks[1:]); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileCustomPlaylistRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	tracks, err = reopened.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(tracks, testTracks[1:]); diff != nil {
		t.Fatal(diff)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "customPlaylist-alice.json" {
		t.Fatalf("unexpected files left behind: %v", entries)
	}
}

func TestFileRepositoryCorrupt(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileCustomPlaylistRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "customPlaylist-alice.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadCustom(context.Background(), "alice"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for corrupt file, got %v", err)
	}
}

func TestFileRepositoryInvalidOwner(t *testing.T) {
	repo, err := NewFileCustomPlaylistRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveCustom(context.Background(), "../x", testTracks); !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
}
