package playlist

import "songshelf/model"

// ActionKind names a per-row control.
type ActionKind string

const (
	ActionAdd      ActionKind = "add"
	ActionRemove   ActionKind = "remove"
	ActionDownload ActionKind = "download"
)

// Action is one control attached to a row. Download actions carry the link
// they point at; add and remove are commands addressed by the row index.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Href     string     `json:"href,omitempty"`
	Filename string     `json:"filename,omitempty"`
}

// Row is one entry of the rendered list.
type Row struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	File    string   `json:"file"`
	Folder  string   `json:"folder"`
	Active  bool     `json:"active"`
	Actions []Action `json:"actions"`
}

// Plan is everything a UI needs to draw the list. When the list is empty
// Rows is empty and Placeholder holds the text to show instead.
type Plan struct {
	Folder      string    `json:"folder"`
	Rows        []Row     `json:"rows"`
	Placeholder string    `json:"placeholder,omitempty"`
	Selection   Selection `json:"selection"`
}

// Selection is the currently highlighted track. Index is -1 when nothing is
// selected, in which case Source and NowPlaying are empty.
type Selection struct {
	Index      int    `json:"index"`
	Source     string `json:"source"`
	NowPlaying string `json:"nowPlaying"`
}

// NoSelection is the initial selection state.
var NoSelection = Selection{Index: -1}

// Valid reports whether the selection points at a row.
func (s Selection) Valid() bool {
	return s.Index >= 0
}

// DownloadLink describes a one-shot download of a track.
type DownloadLink struct {
	Href     string `json:"href"`
	Filename string `json:"filename"`
}

// BuildPlan turns tracks into rows. It has no side effects: the same inputs
// always yield the same plan.
func BuildPlan(folder string, tracks []model.Track, sel Selection, noSongs string) Plan {
	plan := Plan{
		Folder:    folder,
		Rows:      []Row{},
		Selection: sel,
	}
	if len(tracks) == 0 {
		plan.Placeholder = noSongs
		return plan
	}

	for i, t := range tracks {
		row := Row{
			Index:  i,
			Label:  t.Name,
			File:   t.File,
			Folder: t.Folder,
			Active: sel.Valid() && sel.Index == i,
		}
		download := Action{Kind: ActionDownload, Href: TrackURL(t), Filename: t.File}
		if folder == CustomFolder {
			row.Actions = []Action{{Kind: ActionRemove}, download}
		} else {
			row.Actions = []Action{{Kind: ActionAdd}, download}
		}
		plan.Rows = append(plan.Rows, row)
	}
	return plan
}
