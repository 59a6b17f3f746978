package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a folder or file does not exist in the library.
var ErrNotFound = errors.New("not found in music library")

// ErrInvalidName is returned for folder or file names that could escape the
// library root.
var ErrInvalidName = errors.New("invalid folder or file name")

// reservedFolder is shown by the page as the listener's own playlist, so a
// library folder with that name is hidden.
const reservedFolder = "Custom"

// audioExtensions are the file types listed in a folder.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".oga":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".opus": true,
}

// IsAudioFile reports whether name has a supported audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(path.Ext(name))]
}

// ContentType 根据扩展名返回音频的 MIME 类型
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}

// ValidName reports whether name is a single path segment safe to join
// under the library root.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// Object is an opened track.
type Object struct {
	io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// Library enumerates music folders and opens their files.
type Library interface {
	// Folders returns folder names sorted by name.
	Folders(ctx context.Context) ([]string, error)
	// Files returns the audio file names of folder sorted by name.
	Files(ctx context.Context, folder string) ([]string, error)
	// Open opens one file for reading.
	Open(ctx context.Context, folder, file string) (*Object, error)
}
