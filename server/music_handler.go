package server

import (
	"mime"
	"net/http"
	"net/url"

	"songshelf/logger"
	"songshelf/metrics"
	"songshelf/storage"

	"github.com/gorilla/mux"
)

// MusicHandler 提供音乐文件，支持 Range 请求；?download=1 时作为附件下载
func (h *Handler) MusicHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	folder, err := url.PathUnescape(vars["folder"])
	if err != nil {
		http.Error(w, "Invalid folder", http.StatusBadRequest)
		return
	}
	file, err := url.PathUnescape(vars["file"])
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	obj, err := h.library.Open(r.Context(), folder, file)
	if err != nil {
		writeError(w, err)
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", storage.ContentType(obj.Name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name}))
	}

	logger.Debug("Serving track",
		logger.String("folder", folder),
		logger.String("file", file),
		logger.Int64("size", obj.Size),
		logger.String("range", r.Header.Get("Range")))

	metrics.TracksServedTotal.Inc()
	http.ServeContent(w, r, obj.Name, obj.ModTime, obj)
}
