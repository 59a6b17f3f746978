package server

import (
	"context"
	"errors"
)

var errNoSource = errors.New("no audio source")

// audioElement mirrors the page's <audio> element. The browser does the
// actual playback; the server only remembers what the next page must load
// and whether it should start playing on its own.
type audioElement struct {
	src      string
	loads    int
	autoplay bool
}

func (a *audioElement) SetSource(src string) {
	a.src = src
	a.autoplay = false
}

func (a *audioElement) Load() {
	a.loads++
}

func (a *audioElement) Play(_ context.Context) error {
	if a.src == "" {
		return errNoSource
	}
	a.autoplay = true
	return nil
}

// takeAutoplay reports whether the next render should start playback, once.
func (a *audioElement) takeAutoplay() bool {
	v := a.autoplay
	a.autoplay = false
	return v
}
