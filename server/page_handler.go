package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"songshelf/core/playlist"
	"songshelf/i18n"
	"songshelf/logger"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").
	Funcs(template.FuncMap{"urlAttr": urlAttr}).
	ParseFS(templateFS, "templates/index.html"))

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&#34;", `<`, "&lt;", `>`, "&gt;")

// urlAttr renders name="value" for a URL that is already percent-encoded.
// html/template would re-encode ' ( and ) even in a template.URL, so the
// value is emitted as is and only escaped for the double-quoted attribute.
func urlAttr(name, value string) template.HTMLAttr {
	return template.HTMLAttr(name + `="` + attrEscaper.Replace(value) + `"`)
}

type folderLink struct {
	Name    string
	Label   string
	Href    string
	Current bool
}

type noticeView struct {
	Kind    playlist.NoticeKind
	Message string
}

type pageView struct {
	Lang       string
	T          i18n.Dictionary
	Folder     string
	Folders    []folderLink
	Plan       playlist.Plan
	NowPlaying string
	Autoplay   bool
	Notice     *noticeView
	Languages  []folderLink
}

// nowPlayingLabel formats the "now playing" line; an empty name shows a dash.
func nowPlayingLabel(dict i18n.Dictionary, name string) string {
	if name == "" {
		name = "—"
	}
	return fmt.Sprintf("%s: %s", dict.Get(i18n.KeyNowPlaying), name)
}

func folderHref(folder string) string {
	return "/?folder=" + url.QueryEscape(folder)
}

// IndexHandler renders the playlist page for ?folder= (or the session's
// current folder).
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	tag, dict := h.dictionary(r, s)

	if err := h.openFolder(ctx, s, r.URL.Query().Get("folder")); err != nil {
		writeError(w, err)
		return
	}
	folders, err := h.folderList(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	current := s.ctrl.Folder()
	view := pageView{
		Lang:     tag.String(),
		T:        dict,
		Folder:   current,
		Plan:     s.ctrl.Render(dict.Get(i18n.KeyNoSongs)),
		Autoplay: s.audio.takeAutoplay(),
	}
	view.NowPlaying = nowPlayingLabel(dict, view.Plan.Selection.NowPlaying)
	for _, f := range folders {
		label := f
		if f == playlist.CustomFolder {
			label = dict.Get(i18n.KeyCustom)
		}
		view.Folders = append(view.Folders, folderLink{Name: f, Label: label, Href: folderHref(f), Current: f == current})
	}
	for _, lang := range i18n.Languages() {
		view.Languages = append(view.Languages, folderLink{
			Name:    lang,
			Label:   lang,
			Href:    folderHref(current) + "&lang=" + url.QueryEscape(lang),
			Current: lang == view.Lang,
		})
	}
	if n := s.takeNotice(); n != nil {
		view.Notice = &noticeView{Kind: n.Kind, Message: dict.Get(n.Key)}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, view); err != nil {
		logger.Error("Failed to render page", logger.ErrorField(err))
	}
}

// SelectFormHandler handles a row click.
func (h *Handler) SelectFormHandler(w http.ResponseWriter, r *http.Request) {
	h.formCommand(w, r, "select", func(s *session, index int) error {
		s.ctrl.Select(r.Context(), index, true)
		return nil
	})
}

// AddFormHandler handles the add button of a folder row.
func (h *Handler) AddFormHandler(w http.ResponseWriter, r *http.Request) {
	h.formCommand(w, r, "add", func(s *session, index int) error {
		notice, err := s.ctrl.AddTrack(r.Context(), index)
		if err != nil {
			return err
		}
		s.notice = &notice
		return nil
	})
}

// RemoveFormHandler handles the remove button of a Custom row. The form only
// carries confirm=yes once the listener accepted the prompt.
func (h *Handler) RemoveFormHandler(w http.ResponseWriter, r *http.Request) {
	h.formCommand(w, r, "remove", func(s *session, index int) error {
		_, err := s.ctrl.RemoveTrack(r.Context(), index, r.PostFormValue("confirm") == "yes")
		return err
	})
}

// formCommand runs a row command posted from the page and redirects back to
// the page, which then renders the updated list.
func (h *Handler) formCommand(w http.ResponseWriter, r *http.Request, name string, run func(s *session, index int) error) {
	index, ok := indexVar(r)
	if !ok {
		http.Error(w, "Invalid track index", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	// The form names the folder its rows came from; reload it so the index
	// addresses the list the listener saw.
	if err := h.openFolder(ctx, s, r.PostFormValue("folder")); err != nil {
		writeError(w, err)
		return
	}

	err := run(s, index)
	countCommand(name, err)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, folderHref(s.ctrl.Folder()), http.StatusSeeOther)
}
