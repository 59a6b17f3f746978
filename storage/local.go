package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalLibrary reads folders from a directory on disk: every sub directory
// of Root is a folder.
type LocalLibrary struct {
	Root string
}

// NewLocalLibrary creates the root directory if it does not exist.
func NewLocalLibrary(root string) (*LocalLibrary, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create music directory %s: %w", root, err)
	}
	return &LocalLibrary{Root: root}, nil
}

// Folders lists non hidden sub directories of the root.
func (l *LocalLibrary) Folders(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory %s: %w", l.Root, err)
	}

	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || name == reservedFolder {
			continue
		}
		folders = append(folders, name)
	}
	return folders, nil
}

// Files lists the audio files of folder. os.ReadDir already sorts by name.
func (l *LocalLibrary) Files(_ context.Context, folder string) ([]string, error) {
	dir, err := l.folderPath(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") || !IsAudioFile(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// Open opens a file of folder.
func (l *LocalLibrary) Open(_ context.Context, folder, file string) (*Object, error) {
	dir, err := l.folderPath(folder)
	if err != nil {
		return nil, err
	}
	if !ValidName(file) || !IsAudioFile(file) {
		return nil, ErrInvalidName
	}

	f, err := os.Open(filepath.Join(dir, file))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", folder, file, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s/%s: %w", folder, file, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{ReadSeekCloser: f, Name: file, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (l *LocalLibrary) folderPath(folder string) (string, error) {
	if !ValidName(folder) || strings.HasPrefix(folder, ".") {
		return "", ErrInvalidName
	}
	if folder == reservedFolder {
		return "", ErrNotFound
	}
	return filepath.Join(l.Root, folder), nil
}
