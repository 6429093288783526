package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"code-inserter/editor"
	"code-inserter/inserter"
	"code-inserter/logging"
	"code-inserter/marker"
	"code-inserter/panel"
	"code-inserter/snippet"
)

// RegisterRoutes builds the HTTP handler serving the REST API, the panel
// WebSocket and the embedded panel page.
func RegisterRoutes(ctrl *panel.Controller, ws *editor.Workspace, staticFS fs.FS, log logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{ctrl: ctrl, workspace: ws, log: log.With("component", "api")}

	// Snippets REST API
	r.Get("/api/snippets", h.listSnippets)
	r.Put("/api/snippets", h.putSnippets)
	r.Post("/api/snippets", h.addSnippet)
	r.Delete("/api/snippets/{id}", h.deleteSnippet)
	r.Post("/api/snippets/{id}/insert", h.insertSnippet)
	r.Post("/api/snippets/{id}/retract", h.retractSnippet)

	// Active editor
	r.Get("/api/editor", h.getEditor)
	r.Put("/api/editor", h.putEditor)

	// Panel message channel
	r.Get("/api/panel/ws", h.handlePanelWS)

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// In tests staticFS is already rooted at the page files, so Sub returns a
	// wrapper unconditionally (no error) but the sub-FS would look for
	// static/* which doesn't exist. Probe index.html to detect this.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Reading the file directly avoids http.FileServer redirecting
	// ".../index.html" to "./".
	r.Get("/", serveFile(staticSub, "index.html"))

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	ctrl      *panel.Controller
	workspace *editor.Workspace
	log       logging.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an intent error to an HTTP status with the same text the
// panel would show.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, panel.ErrSnippetNotFound),
		errors.Is(err, marker.ErrBlockNotFound),
		errors.Is(err, editor.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, panel.ErrAlreadyInserted),
		errors.Is(err, panel.ErrNotInserted),
		errors.Is(err, editor.ErrNoActiveEditor):
		status = http.StatusConflict
	case errors.Is(err, inserter.ErrInvalidLocation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, snippet.ErrEmptyName),
		errors.Is(err, snippet.ErrEmptyCode),
		errors.Is(err, snippet.ErrInvalidID),
		errors.Is(err, snippet.ErrDuplicateID),
		errors.Is(err, snippet.ErrNoRecord),
		errors.Is(err, marker.ErrInvalidID):
		status = http.StatusBadRequest
	}
	http.Error(w, panel.UserMessage(err), status)
}
