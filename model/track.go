package model

// Track describes one playable song: the raw file name, the name shown in
// the list and the folder the file lives in.
type Track struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Folder string `json:"folder"`
}

// SameAs reports whether both tracks point at the same file of the same folder.
func (t Track) SameAs(other Track) bool {
	return t.File == other.File && t.Folder == other.Folder
}
