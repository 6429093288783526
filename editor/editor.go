package editor

import (
	"context"
	"sync"
)

// Editor is a document shown to the user together with its cursor and the
// range last scrolled into view.
type Editor struct {
	doc *Document

	mu       sync.Mutex
	cursor   Position
	revealed Range
}

func newEditor(doc *Document) *Editor {
	return &Editor{doc: doc}
}

// Document returns the document shown in the editor.
func (e *Editor) Document() *Document { return e.doc }

// Cursor returns the current cursor position.
func (e *Editor) Cursor() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetCursor moves the cursor, clamped to the document.
func (e *Editor) SetCursor(pos Position) {
	pos = e.doc.PositionAt(e.doc.OffsetAt(pos))
	e.mu.Lock()
	e.cursor = pos
	e.mu.Unlock()
}

// Reveal scrolls r into view.
func (e *Editor) Reveal(r Range) {
	e.mu.Lock()
	e.revealed = r
	e.mu.Unlock()
}

// Revealed returns the range last scrolled into view.
func (e *Editor) Revealed() Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revealed
}

// EditBuilder collects the changes of one edit transaction. Positions refer
// to the document as it was before the transaction.
type EditBuilder struct {
	doc   *Document
	edits []edit
}

// Insert queues text to be inserted at pos.
func (b *EditBuilder) Insert(pos Position, text string) {
	off := b.doc.OffsetAt(pos)
	b.edits = append(b.edits, edit{start: off, end: off, text: text})
}

// Delete queues the removal of r.
func (b *EditBuilder) Delete(r Range) {
	b.edits = append(b.edits, edit{start: b.doc.OffsetAt(r.Start), end: b.doc.OffsetAt(r.End)})
}

// Replace queues replacing r with text.
func (b *EditBuilder) Replace(r Range, text string) {
	b.edits = append(b.edits, edit{start: b.doc.OffsetAt(r.Start), end: b.doc.OffsetAt(r.End), text: text})
}

// DeleteOffsets removes the bytes in [start, end).
func (b *EditBuilder) DeleteOffsets(start, end int) {
	b.edits = append(b.edits, edit{start: start, end: end})
}

// Edit runs fn to build a transaction and applies it to the document in one
// step. An empty transaction is a no-op.
func (e *Editor) Edit(ctx context.Context, fn func(*EditBuilder)) error {
	b := &EditBuilder{doc: e.doc}
	fn(b)
	if len(b.edits) == 0 {
		return nil
	}
	return e.doc.apply(ctx, b.edits)
}
