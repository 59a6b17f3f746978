package playlist

import (
	"regexp"
	"strings"

	"songshelf/model"
)

// CustomFolder is the pseudo folder that shows the listener's own playlist.
const CustomFolder = "Custom"

// MusicBasePath is the path, relative to the page root, under which every
// track is served. Audio sources and download links both resolve against it.
const MusicBasePath = "music"

var mp3Suffix = regexp.MustCompile(`(?i)\.mp3$`)

// DisplayName returns the file name with a single trailing ".mp3" removed,
// ignoring case.
func DisplayName(file string) string {
	return mp3Suffix.ReplaceAllString(file, "")
}

// Resolve returns the ordered tracks shown for folder. The Custom folder
// yields a copy of the custom playlist; any other folder maps files in
// their given order.
func Resolve(folder string, files []string, custom []model.Track) []model.Track {
	if folder == CustomFolder {
		out := make([]model.Track, len(custom))
		copy(out, custom)
		return out
	}

	out := make([]model.Track, 0, len(files))
	for _, f := range files {
		out = append(out, model.Track{
			File:   f,
			Name:   DisplayName(f),
			Folder: folder,
		})
	}
	return out
}

// TrackURL builds the playback URL of t: music/{folder}/{file}, both
// segments escaped the way a browser's encodeURIComponent does.
func TrackURL(t model.Track) string {
	return MusicBasePath + "/" + EscapeComponent(t.Folder) + "/" + EscapeComponent(t.File)
}

const upperHex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s byte by byte, leaving only ASCII letters,
// digits and - _ . ! ~ * ' ( ) untouched.
func EscapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponentByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func unreservedComponentByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
