package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"songshelf/core/playlist"
	"songshelf/i18n"
	"songshelf/logger"
	"songshelf/metrics"
	"songshelf/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"
)

// Options configures a Handler.
type Options struct {
	Library       storage.Library
	Store         playlist.Store
	SessionSecret []byte
	SessionTTL    time.Duration
	DefaultLang   string
	SecureCookies bool
}

// Handler serves the playlist page, its JSON API and the music files.
type Handler struct {
	library     storage.Library
	sessions    *sessionManager
	defaultLang string
}

// NewHandler wires a Handler from opts.
func NewHandler(opts Options) *Handler {
	sessions := newSessionManager(opts.Store, opts.SessionSecret, opts.SessionTTL)
	sessions.secure = opts.SecureCookies
	return &Handler{
		library:     opts.Library,
		sessions:    sessions,
		defaultLang: opts.DefaultLang,
	}
}

// Router builds the gorilla/mux router with every route and middleware.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	// Keep %2F inside a segment so file names containing slashes never split a route.
	router.UseEncodedPath()
	router.Use(corsMiddleware, observeMiddleware)

	// 页面
	router.HandleFunc("/", h.IndexHandler).Methods(http.MethodGet)
	router.HandleFunc("/tracks/{index}/select", h.SelectFormHandler).Methods(http.MethodPost)
	router.HandleFunc("/tracks/{index}/add", h.AddFormHandler).Methods(http.MethodPost)
	router.HandleFunc("/tracks/{index}/remove", h.RemoveFormHandler).Methods(http.MethodPost)

	// JSON API
	router.HandleFunc("/api/folders", h.FoldersHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist", h.PlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/select", h.SelectHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/custom", h.GetCustomHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/custom", h.AddCustomHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/custom/{index}", h.RemoveCustomHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{index}/download", h.DownloadHandler).Methods(http.MethodGet)

	// 音乐文件
	router.HandleFunc("/"+playlist.MusicBasePath+"/{folder}/{file}", h.MusicHandler).Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

// HealthHandler reports liveness and the number of live sessions.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.count(),
	})
}

// folderList returns the library folders followed by the Custom pseudo folder.
func (h *Handler) folderList(ctx context.Context) ([]string, error) {
	start := time.Now()
	folders, err := h.library.Folders(ctx)
	metrics.LibraryListDuration.WithLabelValues("folders").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return append(folders, playlist.CustomFolder), nil
}

// openFolder points the session's controller at folder, refreshing the file
// listing. An empty folder keeps the current one, or picks the first library
// folder on a fresh session.
func (h *Handler) openFolder(ctx context.Context, s *session, folder string) error {
	if folder == "" {
		folder = s.ctrl.Folder()
	}
	if folder == "" {
		folders, err := h.folderList(ctx)
		if err != nil {
			return err
		}
		folder = folders[0]
	}

	if folder == playlist.CustomFolder {
		s.ctrl.SetFolder(folder, nil)
		return nil
	}

	start := time.Now()
	files, err := h.library.Files(ctx, folder)
	metrics.LibraryListDuration.WithLabelValues("files").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	s.ctrl.SetFolder(folder, files)
	return nil
}

// dictionary picks the language for r, remembering an explicit ?lang= choice
// on the session.
func (h *Handler) dictionary(r *http.Request, s *session) (language.Tag, i18n.Dictionary) {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		s.lang = lang
	}
	return i18n.Match(s.lang, r.Header.Get("Accept-Language"), h.defaultLang)
}

func indexVar(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, false
	}
	return i, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, playlist.ErrNoSuchTrack), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, playlist.ErrWrongFolder):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// session returns the caller's locked session. It writes a 500 and returns
// false when the custom playlist could not be loaded.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	s, err := h.sessions.acquire(r.Context(), w, r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode JSON response", logger.ErrorField(err))
	}
}

func countCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.PlaylistCommandsTotal.WithLabelValues(command, outcome).Inc()
}
