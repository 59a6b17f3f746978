package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"songshelf/model"
)

// CustomPlaylistKey is the fixed key the custom playlist is stored under.
// Shared stores scope it per owner, see OwnerKey.
const CustomPlaylistKey = "customPlaylist"

var (
	// ErrInvalidOwner is returned for owner ids that cannot be used as a key.
	ErrInvalidOwner = errors.New("invalid playlist owner")
	// ErrCorrupt wraps a stored value that is not a valid playlist. Read
	// failures of the backend itself are not wrapped.
	ErrCorrupt = errors.New("corrupt custom playlist")
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// OwnerKey returns the storage key of owner's custom playlist.
func OwnerKey(owner string) (string, error) {
	if !ownerPattern.MatchString(owner) {
		return "", ErrInvalidOwner
	}
	return fmt.Sprintf("%s:%s", CustomPlaylistKey, owner), nil
}

// EncodeTracks serializes a custom playlist as a JSON array of
// {file, name, folder} records. A nil list encodes as [].
func EncodeTracks(tracks []model.Track) ([]byte, error) {
	if tracks == nil {
		tracks = []model.Track{}
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal custom playlist: %w", err)
	}
	return data, nil
}

// DecodeTracks parses a stored custom playlist. Empty input is an empty list.
func DecodeTracks(data []byte) ([]model.Track, error) {
	if len(data) == 0 {
		return []model.Track{}, nil
	}
	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if tracks == nil {
		tracks = []model.Track{}
	}
	return tracks, nil
}

// MemoryCustomPlaylistRepository keeps serialized playlists in process memory.
type MemoryCustomPlaylistRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryCustomPlaylistRepository creates an empty in-memory repository.
func NewMemoryCustomPlaylistRepository() *MemoryCustomPlaylistRepository {
	return &MemoryCustomPlaylistRepository{data: make(map[string][]byte)}
}

// LoadCustom returns the stored playlist of owner, empty when none is stored.
func (r *MemoryCustomPlaylistRepository) LoadCustom(_ context.Context, owner string) ([]model.Track, error) {
	key, err := OwnerKey(owner)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	data := r.data[key]
	r.mu.RUnlock()
	return DecodeTracks(data)
}

// SaveCustom replaces the stored playlist of owner.
func (r *MemoryCustomPlaylistRepository) SaveCustom(_ context.Context, owner string, tracks []model.Track) error {
	key, err := OwnerKey(owner)
	if err != nil {
		return err
	}
	data, err := EncodeTracks(tracks)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[key] = data
	r.mu.Unlock()
	return nil
}

// SetRaw stores raw bytes for owner, bypassing encoding.
func (r *MemoryCustomPlaylistRepository) SetRaw(owner string, data []byte) error {
	key, err := OwnerKey(owner)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[key] = append([]byte(nil), data...)
	r.mu.Unlock()
	return nil
}

// FileCustomPlaylistRepository stores one JSON file per owner in a directory.
type FileCustomPlaylistRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileCustomPlaylistRepository creates the directory if needed.
func NewFileCustomPlaylistRepository(dir string) (*FileCustomPlaylistRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create playlist directory %s: %w", dir, err)
	}
	return &FileCustomPlaylistRepository{dir: dir}, nil
}

func (r *FileCustomPlaylistRepository) path(owner string) (string, error) {
	if !ownerPattern.MatchString(owner) {
		return "", ErrInvalidOwner
	}
	return filepath.Join(r.dir, CustomPlaylistKey+"-"+owner+".json"), nil
}

// LoadCustom reads owner's playlist file; a missing file is an empty list.
func (r *FileCustomPlaylistRepository) LoadCustom(_ context.Context, owner string) ([]model.Track, error) {
	p, err := r.path(owner)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Track{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read custom playlist %s: %w", p, err)
	}
	return DecodeTracks(data)
}

// SaveCustom writes the whole playlist to a temporary file and renames it
// over the previous one, so a failed write keeps the old content.
func (r *FileCustomPlaylistRepository) SaveCustom(_ context.Context, owner string, tracks []model.Track) error {
	p, err := r.path(owner)
	if err != nil {
		return err
	}
	data, err := EncodeTracks(tracks)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, ".tmp-"+owner+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write custom playlist: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync custom playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close custom playlist: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to replace custom playlist %s: %w", p, err)
	}
	return nil
}
