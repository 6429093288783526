// Package editor models the host editor the snippet panel works against: a
// workspace of file-backed documents, one active editor with a cursor, and
// edit transactions that write through to disk.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrNoActiveEditor   = errors.New("no active editor")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidPosition  = errors.New("invalid position")
)

// DefaultCacheSize is the number of documents kept in memory by default.
const DefaultCacheSize = 64

// Workspace is a project directory opened in the editor.
type Workspace struct {
	root string

	mu     sync.Mutex
	docs   *lru.Cache[string, *Document]
	active *Editor
}

// NewWorkspace opens root as a workspace. cacheSize bounds the number of
// documents kept in memory; <= 0 uses DefaultCacheSize.
func NewWorkspace(root string, cacheSize int) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if target, err := filepath.EvalSymlinks(abs); err == nil {
		abs = target
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	docs, err := lru.New[string, *Document](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Workspace{root: abs, docs: docs}, nil
}

// Root returns the absolute workspace directory with symlinks resolved.
func (w *Workspace) Root() string { return w.root }

// Resolve maps path to an absolute file path under the root and its
// root-relative form. Relative paths are joined with the root; absolute paths
// must lie under it. Symlinks are followed and the target must also lie under
// the root; the returned absolute path is the target. A bare file name that
// does not exist falls back to the first file under the root with that name.
func (w *Workspace) Resolve(path string) (abs, rel string, err error) {
	if strings.TrimSpace(path) == "" {
		return "", "", ErrDocumentNotFound
	}
	candidate := filepath.FromSlash(path)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(w.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	if !w.contains(candidate) {
		return "", "", fmt.Errorf("%s is outside the workspace: %w", path, ErrDocumentNotFound)
	}
	rel, _ = filepath.Rel(w.root, candidate)

	if _, statErr := os.Stat(candidate); statErr == nil {
		target, err := w.realPath(path, candidate)
		if err != nil {
			return "", "", err
		}
		return target, filepath.ToSlash(rel), nil
	} else if !errors.Is(statErr, fs.ErrNotExist) || !isBareName(path) {
		return "", "", fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
	}

	found, err := w.findByName(filepath.Base(candidate))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
	}
	target, err := w.realPath(path, found)
	if err != nil {
		return "", "", err
	}
	rel, _ = filepath.Rel(w.root, found)
	return target, filepath.ToSlash(rel), nil
}

func isBareName(path string) bool {
	p := filepath.FromSlash(path)
	return !filepath.IsAbs(p) && filepath.Base(p) == p
}

func (w *Workspace) contains(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// realPath follows symlinks in abs and rejects targets outside the root.
func (w *Workspace) realPath(path, abs string) (string, error) {
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
	}
	if !w.contains(target) {
		return "", fmt.Errorf("%s links outside the workspace: %w", path, ErrDocumentNotFound)
	}
	return target, nil
}

func (w *Workspace) findByName(name string) (string, error) {
	var found string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fs.ErrNotExist
	}
	return found, nil
}

// OpenDocument returns the document for path, loading it from disk when it
// is not cached or changed on disk since it was loaded.
func (w *Workspace) OpenDocument(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, rel, err := w.Resolve(path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.openLocked(rel, abs)
}

func (w *Workspace) openLocked(rel, abs string) (*Document, error) {
	if doc, ok := w.docs.Get(rel); ok && !doc.changedOnDisk() {
		return doc, nil
	}
	if w.active != nil && w.active.doc.path == rel && !w.active.doc.changedOnDisk() {
		w.docs.Add(rel, w.active.doc)
		return w.active.doc, nil
	}
	doc, err := loadDocument(rel, abs)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", rel, err, ErrDocumentNotFound)
	}
	w.docs.Add(rel, doc)
	return doc, nil
}

// ShowDocument opens path, makes it the active editor and moves the cursor
// to pos, scrolling it into view. pos must lie inside the document.
func (w *Workspace) ShowDocument(ctx context.Context, path string, pos Position) (*Editor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, rel, err := w.Resolve(path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.openLocked(rel, abs)
	if err != nil {
		return nil, err
	}
	if pos.Line < 0 || pos.Line >= doc.LineCount() || pos.Character < 0 {
		return nil, fmt.Errorf("%s line %d: %w", rel, pos.Line+1, ErrInvalidPosition)
	}

	ed := w.active
	if ed == nil || ed.doc != doc {
		ed = newEditor(doc)
	}
	ed.SetCursor(pos)
	cur := ed.Cursor()
	ed.Reveal(Range{Start: cur, End: cur})
	w.active = ed
	return ed, nil
}

// ActiveEditor returns the focused editor. A document modified on disk by
// another program is reloaded and the cursor kept where it was when possible.
func (w *Workspace) ActiveEditor() (*Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil, ErrNoActiveEditor
	}
	if !w.active.doc.changedOnDisk() {
		return w.active, nil
	}
	doc, err := loadDocument(w.active.doc.path, w.active.doc.abs)
	if err != nil {
		w.docs.Remove(w.active.doc.path)
		w.active = nil
		return nil, ErrNoActiveEditor
	}
	w.docs.Add(doc.path, doc)
	ed := newEditor(doc)
	ed.SetCursor(w.active.Cursor())
	w.active = ed
	return ed, nil
}

// CloseActive drops the focus; subsequent ActiveEditor calls fail.
func (w *Workspace) CloseActive() {
	w.mu.Lock()
	w.active = nil
	w.mu.Unlock()
}
