package editor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"code-inserter/filex"
)

// Document is a file under the workspace root held in memory. Edits are
// written through to disk as a whole.
type Document struct {
	mu      sync.RWMutex
	path    string // root-relative, slash separated
	abs     string
	text    string
	lines   []int // byte offset of each line start
	version int
	modTime time.Time
	size    int64
	perm    os.FileMode
}

func loadDocument(path, abs string) (*Document, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	d := &Document{
		path:    path,
		abs:     abs,
		modTime: info.ModTime(),
		size:    info.Size(),
		perm:    info.Mode().Perm(),
	}
	d.setText(string(data))
	return d, nil
}

// Path returns the document path relative to the workspace root.
func (d *Document) Path() string { return d.path }

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Version increases by one for every applied edit transaction.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// LineCount returns the number of lines; text after the last line break
// counts as a line, so it is never zero.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// OffsetAt converts pos to a byte offset. Positions past the end of a line
// or the document are clamped.
func (d *Document) OffsetAt(pos Position) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offsetAt(pos)
}

// PositionAt converts a byte offset to a position, clamping to the document.
func (d *Document) PositionAt(offset int) Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.positionAt(offset)
}

func (d *Document) offsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lines) {
		return len(d.text)
	}
	start := d.lines[pos.Line]
	end := d.lineEnd(pos.Line)
	if pos.Character < 0 {
		return start
	}
	if start+pos.Character > end {
		return end
	}
	return start + pos.Character
}

func (d *Document) positionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > offset }) - 1
	return Position{Line: line, Character: offset - d.lines[line]}
}

// lineEnd returns the offset of the line terminator of line (or the end of
// the text for the last line).
func (d *Document) lineEnd(line int) int {
	if line+1 < len(d.lines) {
		end := d.lines[line+1] - 1
		if end > d.lines[line] && d.text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(d.text)
}

func (d *Document) setText(text string) {
	d.text = text
	d.lines = d.lines[:0]
	d.lines = append(d.lines, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lines = append(d.lines, i+1)
		}
	}
}

// changedOnDisk reports whether the file was modified since it was loaded or
// last written by this document.
func (d *Document) changedOnDisk() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, err := os.Stat(d.abs)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(d.modTime) || info.Size() != d.size
}

type edit struct {
	start, end int
	text       string
}

// apply performs a set of non-overlapping edits as one transaction and writes
// the result to disk. Nothing changes when the write fails.
func (d *Document) apply(ctx context.Context, edits []edit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	// Edits at the same offset keep the order they were queued in.
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		return edits[i].end < edits[j].end
	})
	text := d.text
	prev := 0
	for _, e := range edits {
		if e.start < 0 || e.end > len(text) || e.start > e.end {
			return fmt.Errorf("edit [%d,%d) outside document: %w", e.start, e.end, ErrInvalidPosition)
		}
		if e.start < prev {
			return fmt.Errorf("overlapping edits at %d: %w", e.start, ErrInvalidPosition)
		}
		prev = e.end
	}

	var b strings.Builder
	b.Grow(len(text))
	cursor := 0
	for _, e := range edits {
		b.WriteString(text[cursor:e.start])
		b.WriteString(e.text)
		cursor = e.end
	}
	b.WriteString(text[cursor:])
	next := b.String()

	if err := filex.WriteAtomic(d.abs, []byte(next), d.perm); err != nil {
		return err
	}
	if info, err := os.Stat(d.abs); err == nil {
		d.modTime = info.ModTime()
		d.size = info.Size()
	}
	d.setText(next)
	d.version++
	return nil
}
