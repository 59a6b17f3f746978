package server

import (
	"encoding/json"
	"net/http"

	"songshelf/core/playlist"
	"songshelf/i18n"
	"songshelf/model"
)

type selectRequest struct {
	Index   int  `json:"index"`
	PlayNow bool `json:"playNow"`
}

// addRequest names the folder the index refers to; empty keeps the
// session's current folder.
type addRequest struct {
	Index  int    `json:"index"`
	Folder string `json:"folder"`
}

type noticeResponse struct {
	Kind    playlist.NoticeKind `json:"kind"`
	Key     string              `json:"key"`
	Message string              `json:"message"`
}

type playlistResponse struct {
	playlist.Plan
	NowPlayingLabel string `json:"nowPlayingLabel"`
}

// FoldersHandler 返回文件夹列表（Custom 在最后）
func (h *Handler) FoldersHandler(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderList(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"folders": folders})
}

// PlaylistHandler 打开 ?folder= 并返回渲染计划
func (h *Handler) PlaylistHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	_, dict := h.dictionary(r, s)
	if err := h.openFolder(ctx, s, r.URL.Query().Get("folder")); err != nil {
		writeError(w, err)
		return
	}
	plan := s.ctrl.Render(dict.Get(i18n.KeyNoSongs))
	writeJSON(w, http.StatusOK, playlistResponse{
		Plan:            plan,
		NowPlayingLabel: nowPlayingLabel(dict, plan.Selection.NowPlaying),
	})
}

// SelectHandler 选择当前列表中的一首歌
func (h *Handler) SelectHandler(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if err := h.openFolder(ctx, s, ""); err != nil {
		writeError(w, err)
		return
	}
	sel := s.ctrl.Select(ctx, req.Index, req.PlayNow)
	countCommand("select", nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"selection": sel,
		"autoplay":  s.audio.takeAutoplay(),
	})
}

// GetCustomHandler 返回自定义歌单
func (h *Handler) GetCustomHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	tracks := s.ctrl.Custom()
	if tracks == nil {
		tracks = []model.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

// AddCustomHandler 把 folder（默认当前文件夹）中 index 处的歌曲加入自定义歌单
func (h *Handler) AddCustomHandler(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	_, dict := h.dictionary(r, s)
	if err := h.openFolder(ctx, s, req.Folder); err != nil {
		writeError(w, err)
		return
	}
	notice, err := s.ctrl.AddTrack(ctx, req.Index)
	countCommand("add", err)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if notice.Key == i18n.KeyAddedToPlaylist {
		status = http.StatusCreated
	}
	writeJSON(w, status, noticeResponse{Kind: notice.Kind, Key: notice.Key, Message: dict.Get(notice.Key)})
}

// RemoveCustomHandler 删除自定义歌单中的一首歌。DELETE 本身就是确认。
func (h *Handler) RemoveCustomHandler(w http.ResponseWriter, r *http.Request) {
	index, ok := indexVar(r)
	if !ok {
		http.Error(w, "Invalid track index", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if err := h.openFolder(ctx, s, playlist.CustomFolder); err != nil {
		writeError(w, err)
		return
	}
	removed, err := s.ctrl.RemoveTrack(ctx, index, true)
	countCommand("remove", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"removed":   removed,
		"selection": s.ctrl.Selection(),
	})
}

// DownloadHandler 返回当前列表中 index 处歌曲的下载链接
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	index, ok := indexVar(r)
	if !ok {
		http.Error(w, "Invalid track index", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if err := h.openFolder(ctx, s, r.URL.Query().Get("folder")); err != nil {
		writeError(w, err)
		return
	}
	link, err := s.ctrl.DownloadTrack(index)
	countCommand("download", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}
