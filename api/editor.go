package api

import (
	"encoding/json"
	"net/http"

	"code-inserter/editor"
	"code-inserter/marker"
)

type blockView struct {
	SnippetID string `json:"snippetId"`
	StartLine int    `json:"startLine"` // 1-indexed, the START marker line
	EndLine   int    `json:"endLine"`   // 1-indexed, the END marker line
}

type editorView struct {
	FilePath string          `json:"filePath"`
	Line     int             `json:"line"` // 1-indexed cursor line
	Cursor   editor.Position `json:"cursor"`
	Version  int             `json:"version"`
	Text     string          `json:"text"`
	Blocks   []blockView     `json:"blocks"`
}

func newEditorView(ed *editor.Editor) editorView {
	doc := ed.Document()
	text := doc.Text()
	cur := ed.Cursor()
	v := editorView{
		FilePath: doc.Path(),
		Line:     cur.Line + 1,
		Cursor:   cur,
		Version:  doc.Version(),
		Text:     text,
		Blocks:   []blockView{},
	}
	for _, b := range marker.Blocks(text) {
		start := b.Span.Start
		if text[start] == '\n' {
			start++
		}
		// End is just past the END line's line break (or at end of text).
		end := b.Span.End - 1
		v.Blocks = append(v.Blocks, blockView{
			SnippetID: b.ID,
			StartLine: doc.PositionAt(start).Line + 1,
			EndLine:   doc.PositionAt(end).Line + 1,
		})
	}
	return v
}

func (h *handler) getEditor(w http.ResponseWriter, r *http.Request) {
	ed, err := h.workspace.ActiveEditor()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEditorView(ed))
}

// putEditor focuses a file at a line, the way a user clicking into the
// editor would.
func (h *handler) putEditor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FilePath string `json:"filePath"`
		Line     int    `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Line == 0 {
		req.Line = 1
	}
	if err := h.ctrl.JumpToLocation(r.Context(), req.FilePath, req.Line); err != nil {
		writeError(w, err)
		return
	}
	h.getEditor(w, r)
}
