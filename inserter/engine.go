// Package inserter inserts snippet code wrapped in marker lines at the cursor
// of the active editor, and removes such blocks again.
package inserter

import (
	"context"
	"errors"
	"fmt"

	"code-inserter/editor"
	"code-inserter/logging"
	"code-inserter/marker"
)

// ErrInvalidLocation is returned for a jump to a line outside the document.
var ErrInvalidLocation = errors.New("invalid location")

// Host is the part of the editor the engine drives.
type Host interface {
	ActiveEditor() (*editor.Editor, error)
	OpenDocument(ctx context.Context, path string) (*editor.Document, error)
	ShowDocument(ctx context.Context, path string, pos editor.Position) (*editor.Editor, error)
}

// Engine edits marker blocks in the documents of a Host.
type Engine struct {
	host Host
	log  logging.Logger
}

// New returns an Engine working against host.
func New(host Host, log logging.Logger) *Engine {
	return &Engine{host: host, log: log.With("component", "inserter")}
}

// InsertionResult identifies the snippet whose block was inserted.
type InsertionResult struct {
	SnippetID string
}

// InsertAtCursor inserts the wrapped code at the cursor of the active editor
// as one edit, then moves the cursor right after the inserted text.
func (e *Engine) InsertAtCursor(ctx context.Context, code, snippetID string) (InsertionResult, error) {
	if !marker.ValidID(snippetID) {
		return InsertionResult{}, fmt.Errorf("%q: %w", snippetID, marker.ErrInvalidID)
	}
	ed, err := e.host.ActiveEditor()
	if err != nil {
		return InsertionResult{}, err
	}

	doc := ed.Document()
	pos := ed.Cursor()
	start := doc.OffsetAt(pos)
	wrapped := marker.Wrap(snippetID, code)

	if err := ed.Edit(ctx, func(b *editor.EditBuilder) {
		b.Insert(pos, wrapped)
	}); err != nil {
		return InsertionResult{}, fmt.Errorf("insert into %s: %w", doc.Path(), err)
	}

	after := doc.PositionAt(start + len(wrapped))
	ed.SetCursor(after)
	ed.Reveal(editor.Range{Start: after, End: after})

	e.log.Debug(ctx, "block inserted", "snippet_id", snippetID, "file", doc.Path(), "at", pos.String())
	return InsertionResult{SnippetID: snippetID}, nil
}

// RemoveBySnippetID deletes the first block tagged with snippetID from the
// active document. The document is left untouched when no block is found.
func (e *Engine) RemoveBySnippetID(ctx context.Context, snippetID string) error {
	ed, err := e.host.ActiveEditor()
	if err != nil {
		return err
	}
	doc := ed.Document()
	span, err := marker.Locate(doc.Text(), snippetID)
	if err != nil {
		return fmt.Errorf("%s in %s: %w", snippetID, doc.Path(), err)
	}

	if err := ed.Edit(ctx, func(b *editor.EditBuilder) {
		b.DeleteOffsets(span.Start, span.End)
	}); err != nil {
		return fmt.Errorf("remove from %s: %w", doc.Path(), err)
	}

	e.log.Debug(ctx, "block removed", "snippet_id", snippetID, "file", doc.Path())
	return nil
}

// JumpToLocation opens filePath, makes it the active editor and puts the
// cursor at the start of the 1-indexed line. Lines outside the document fail
// with ErrInvalidLocation.
func (e *Engine) JumpToLocation(ctx context.Context, filePath string, line int) error {
	if line < 1 {
		return fmt.Errorf("%s line %d: %w", filePath, line, ErrInvalidLocation)
	}
	_, err := e.host.ShowDocument(ctx, filePath, editor.Position{Line: line - 1})
	if errors.Is(err, editor.ErrInvalidPosition) {
		return fmt.Errorf("%s line %d: %w", filePath, line, ErrInvalidLocation)
	}
	return err
}

// Locate reports the lines covered by the block for snippetID in the active
// document without changing it.
func (e *Engine) Locate(ctx context.Context, snippetID string) (editor.Range, error) {
	ed, err := e.host.ActiveEditor()
	if err != nil {
		return editor.Range{}, err
	}
	return locateIn(ed.Document(), snippetID)
}

// LocateIn is Locate against the document at filePath, which does not need
// to be the active one.
func (e *Engine) LocateIn(ctx context.Context, filePath, snippetID string) (editor.Range, error) {
	doc, err := e.host.OpenDocument(ctx, filePath)
	if err != nil {
		return editor.Range{}, err
	}
	return locateIn(doc, snippetID)
}

func locateIn(doc *editor.Document, snippetID string) (editor.Range, error) {
	span, err := marker.Locate(doc.Text(), snippetID)
	if err != nil {
		return editor.Range{}, err
	}
	return editor.Range{Start: doc.PositionAt(span.Start), End: doc.PositionAt(span.End)}, nil
}
