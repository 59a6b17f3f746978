package playlist

import (
	"context"
	"errors"
	"fmt"

	"songshelf/i18n"
	"songshelf/logger"
	"songshelf/model"
	"songshelf/repository"
)

var (
	// ErrNoSuchTrack is returned by row commands addressed to an index that is
	// not in the displayed list.
	ErrNoSuchTrack = errors.New("no track at this index")
	// ErrWrongFolder is returned when a command is not offered for the
	// current folder (add inside Custom, remove outside it).
	ErrWrongFolder = errors.New("action not available in this folder")
)

// Store persists the custom playlist of one owner. Save replaces the whole
// stored list; a failed Save leaves the previous value in place.
type Store interface {
	LoadCustom(ctx context.Context, owner string) ([]model.Track, error)
	SaveCustom(ctx context.Context, owner string, tracks []model.Track) error
}

// Player is the audio element the controller drives.
type Player interface {
	SetSource(src string)
	Load()
	Play(ctx context.Context) error
}

// NoticeKind tells a UI how to present a notice.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a message for the listener, identified by its i18n key.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Key  string     `json:"key"`
}

// Controller owns the list shown to one listener: the current folder and its
// files, the custom playlist and the selection. It is not safe for
// concurrent use; callers serialize commands.
type Controller struct {
	store  Store
	owner  string
	player Player

	folder string
	files  []string
	custom []model.Track
	sel    Selection
}

// NewController loads the owner's custom playlist once. A missing or corrupt
// entry starts an empty playlist. Any other load error is returned and no
// controller is built, so nothing can overwrite the stored list.
func NewController(ctx context.Context, store Store, owner string, player Player) (*Controller, error) {
	custom, err := store.LoadCustom(ctx, owner)
	switch {
	case errors.Is(err, repository.ErrCorrupt):
		logger.Warn("Custom playlist is corrupt, starting empty",
			logger.String("owner", owner), logger.ErrorField(err))
		custom = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load custom playlist: %w", err)
	}

	return &Controller{
		store:  store,
		owner:  owner,
		player: player,
		custom: custom,
		sel:    NoSelection,
	}, nil
}

// Folder returns the folder currently displayed, empty before the first
// SetFolder.
func (c *Controller) Folder() string {
	return c.folder
}

// Selection returns the current selection state.
func (c *Controller) Selection() Selection {
	return c.sel
}

// Custom returns a copy of the in-memory custom playlist.
func (c *Controller) Custom() []model.Track {
	return Resolve(CustomFolder, nil, c.custom)
}

// Tracks returns the displayed list.
func (c *Controller) Tracks() []model.Track {
	return Resolve(c.folder, c.files, c.custom)
}

// SetFolder switches the displayed folder. files is ignored for the Custom
// folder. Switching to another folder drops the selection; reloading the same
// folder keeps it only while it still points at the same track.
func (c *Controller) SetFolder(folder string, files []string) {
	if folder == CustomFolder {
		files = nil
	}
	changed := folder != c.folder
	c.folder = folder
	c.files = append([]string(nil), files...)

	if changed {
		c.clearSelection()
		return
	}
	if c.sel.Valid() {
		tracks := c.Tracks()
		if c.sel.Index >= len(tracks) || TrackURL(tracks[c.sel.Index]) != c.sel.Source {
			c.clearSelection()
		}
	}
}

// Render builds the plan for the displayed list.
func (c *Controller) Render(noSongs string) Plan {
	return BuildPlan(c.folder, c.Tracks(), c.sel, noSongs)
}

// Select makes the track at index the current one and loads it into the
// player, starting playback when playNow is set. An index outside the list
// resets the player and the selection instead.
func (c *Controller) Select(ctx context.Context, index int, playNow bool) Selection {
	tracks := c.Tracks()
	if index < 0 || index >= len(tracks) {
		c.clearSelection()
		return c.sel
	}

	t := tracks[index]
	src := TrackURL(t)
	c.player.SetSource(src)
	c.player.Load()
	c.sel = Selection{Index: index, Source: src, NowPlaying: t.Name}

	if playNow {
		if err := c.player.Play(ctx); err != nil {
			logger.Warn("Autoplay prevented",
				logger.String("source", src), logger.ErrorField(err))
		}
	}
	return c.sel
}

// AddTrack appends the track at index of a regular folder to the custom
// playlist and persists it. A track already in the playlist is rejected with
// a notice. When persisting fails the track stays in the in-memory playlist.
func (c *Controller) AddTrack(ctx context.Context, index int) (Notice, error) {
	if c.folder == CustomFolder {
		return Notice{}, ErrWrongFolder
	}
	tracks := c.Tracks()
	if index < 0 || index >= len(tracks) {
		return Notice{}, ErrNoSuchTrack
	}
	t := tracks[index]

	for _, existing := range c.custom {
		if existing.SameAs(t) {
			return Notice{Kind: NoticeError, Key: i18n.KeyAlreadyInPlaylist}, nil
		}
	}

	c.custom = append(c.custom, t)
	if err := c.store.SaveCustom(ctx, c.owner, c.custom); err != nil {
		logger.Error("Failed to save custom playlist",
			logger.String("owner", c.owner), logger.ErrorField(err))
		return Notice{Kind: NoticeError, Key: i18n.KeyAddFailed}, nil
	}
	logger.Info("Track added to custom playlist",
		logger.String("owner", c.owner),
		logger.String("folder", t.Folder),
		logger.String("file", t.File))
	return Notice{Kind: NoticeInfo, Key: i18n.KeyAddedToPlaylist}, nil
}

// RemoveTrack deletes the custom playlist entry at index once the listener
// confirmed it, persists the playlist and reports whether anything was
// removed. Removing the selected track clears the selection; removing a track
// above it keeps the same track selected.
func (c *Controller) RemoveTrack(ctx context.Context, index int, confirmed bool) (bool, error) {
	if c.folder != CustomFolder {
		return false, ErrWrongFolder
	}
	if index < 0 || index >= len(c.custom) {
		return false, ErrNoSuchTrack
	}
	if !confirmed {
		return false, nil
	}

	removed := c.custom[index]
	c.custom = append(c.custom[:index:index], c.custom[index+1:]...)
	if err := c.store.SaveCustom(ctx, c.owner, c.custom); err != nil {
		logger.Error("Failed to save custom playlist",
			logger.String("owner", c.owner), logger.ErrorField(err))
	}

	switch {
	case !c.sel.Valid():
	case c.sel.Index == index:
		c.clearSelection()
	case c.sel.Index > index:
		c.sel.Index--
	}

	logger.Info("Track removed from custom playlist",
		logger.String("owner", c.owner),
		logger.String("folder", removed.Folder),
		logger.String("file", removed.File))
	return true, nil
}

// DownloadTrack returns the link to download the track at index. It changes
// no state.
func (c *Controller) DownloadTrack(index int) (DownloadLink, error) {
	tracks := c.Tracks()
	if index < 0 || index >= len(tracks) {
		return DownloadLink{}, ErrNoSuchTrack
	}
	t := tracks[index]
	return DownloadLink{Href: TrackURL(t), Filename: t.File}, nil
}

func (c *Controller) clearSelection() {
	c.player.SetSource("")
	c.sel = NoSelection
}
