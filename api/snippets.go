package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"code-inserter/snippet"
)

type snippetList struct {
	Snippets []snippet.Snippet `json:"snippets"`
}

func (h *handler) listSnippets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snippetList{Snippets: h.ctrl.Snippets()})
}

func (h *handler) putSnippets(w http.ResponseWriter, r *http.Request) {
	var body snippetList
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Snippets == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.ctrl.UpdateSnippets(r.Context(), body.Snippets); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippetList{Snippets: h.ctrl.Snippets()})
}

func (h *handler) addSnippet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s, err := h.ctrl.Add(r.Context(), req.Name, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *handler) deleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) insertSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// The body is optional; without it the stored code is inserted.
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.ctrl.Insert(r.Context(), id, req.Code); err != nil {
		writeError(w, err)
		return
	}
	h.writeSnippet(w, id)
}

func (h *handler) retractSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ctrl.Retract(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.writeSnippet(w, id)
}

func (h *handler) writeSnippet(w http.ResponseWriter, id string) {
	s, ok := h.ctrl.Get(id)
	if !ok {
		http.Error(w, "snippet not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
