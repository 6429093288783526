// Package panel drives the snippet panel: it turns UI intents into store and
// insertion-engine calls and keeps the UI's snippet list in step.
package panel

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"code-inserter/editor"
	"code-inserter/inserter"
	"code-inserter/logging"
	"code-inserter/marker"
	"code-inserter/snippet"
)

var (
	ErrSnippetNotFound = errors.New("snippet not found")
	ErrAlreadyInserted = errors.New("snippet already inserted")
	ErrNotInserted     = errors.New("snippet has not been inserted")
	ErrUnknownMessage  = errors.New("unknown message type")
)

// Host exposes the editor state the controller records on insert.
type Host interface {
	ActiveEditor() (*editor.Editor, error)
}

// Controller owns the in-memory snippet list. Intents are handled one at a
// time; each state change is written through to the store and pushed to the
// panel client.
type Controller struct {
	mu       sync.Mutex
	store    *snippet.Store
	engine   *inserter.Engine
	host     Host
	log      logging.Logger
	now      func() time.Time
	newID    func() string
	snippets []snippet.Snippet

	outMu sync.Mutex
	out   chan Event
	kick  chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for insert timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator sets the generator for new snippet ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// New builds a controller and loads the stored snippets.
func New(ctx context.Context, store *snippet.Store, engine *inserter.Engine, host Host, log logging.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		engine: engine,
		host:   host,
		log:    log.With("component", "panel"),
		now:    time.Now,
		newID:  snippet.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snippets = store.Load(ctx)
	return c
}

// Snippets returns a copy of the current list.
func (c *Controller) Snippets() []snippet.Snippet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snippet.CloneAll(c.snippets)
}

// Get returns a copy of the snippet with id.
func (c *Controller) Get(id string) (snippet.Snippet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.snippets[i].Clone(), true
	}
	return snippet.Snippet{}, false
}

// Ready pushes the current list to the client after dropping insert state
// whose marker block no longer exists.
func (c *Controller) Ready(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconcileLocked(ctx) {
		c.commitLocked(ctx)
		return
	}
	c.pushSnippets(ctx)
}

// Add appends a new idle snippet.
func (c *Controller) Add(ctx context.Context, name, code string) (snippet.Snippet, error) {
	if strings.TrimSpace(name) == "" {
		return snippet.Snippet{}, snippet.ErrEmptyName
	}
	if strings.TrimSpace(code) == "" {
		return snippet.Snippet{}, snippet.ErrEmptyCode
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := snippet.Snippet{ID: c.newID(), Name: name, Code: code}
	c.snippets = append(c.snippets, s)
	c.commitLocked(ctx)
	c.log.Info(ctx, "snippet added", "snippet_id", s.ID, "name", name)
	return s.Clone(), nil
}

// Delete removes a snippet. A block it inserted stays in its document.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrSnippetNotFound)
	}
	c.snippets = append(c.snippets[:i:i], c.snippets[i+1:]...)
	c.commitLocked(ctx)
	c.log.Info(ctx, "snippet deleted", "snippet_id", id)
	return nil
}

// Insert inserts the snippet at the cursor of the active editor and records
// where. code overrides the stored code when non-empty.
func (c *Controller) Insert(ctx context.Context, id, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrSnippetNotFound)
	}
	s := &c.snippets[i]
	if s.IsInserted {
		return fmt.Errorf("%s: %w", id, ErrAlreadyInserted)
	}
	if code == "" {
		code = s.Code
	}

	ed, err := c.host.ActiveEditor()
	if err != nil {
		return err
	}
	filePath := ed.Document().Path()
	line := ed.Cursor().Line + 1

	if _, err := c.engine.InsertAtCursor(ctx, code, id); err != nil {
		return err
	}

	s.IsInserted = true
	s.LastInsertedAt = &snippet.InsertRecord{
		FilePath:  filePath,
		FileName:  path.Base(filePath),
		Positions: []int{line},
		Timestamp: snippet.FormatTimestamp(c.now()),
	}
	c.commitLocked(ctx)
	c.log.Info(ctx, "snippet inserted", "snippet_id", id, "file", filePath, "line", line)
	c.notify(ctx, LevelInfo, fmt.Sprintf("Inserted %q at %s line %d", s.Name, filePath, line))
	return nil
}

// Retract jumps to where the snippet was last inserted and removes its block.
func (c *Controller) Retract(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrSnippetNotFound)
	}
	rec := c.snippets[i].LastInsertedAt
	if rec == nil || len(rec.Positions) == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotInserted)
	}

	if err := c.engine.JumpToLocation(ctx, rec.FilePath, rec.Positions[0]); err != nil {
		return err
	}
	if err := c.engine.RemoveBySnippetID(ctx, id); err != nil {
		return err
	}

	c.clearLocked(i)
	c.commitLocked(ctx)
	c.log.Info(ctx, "snippet retracted", "snippet_id", id, "file", rec.FilePath)
	c.notify(ctx, LevelInfo, fmt.Sprintf("Removed %q from %s", c.snippets[i].Name, rec.FilePath))
	return nil
}

// RemoveCode removes the block for id from the active document and, when
// the snippet is known, resets it to idle.
func (c *Controller) RemoveCode(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.engine.RemoveBySnippetID(ctx, id); err != nil {
		return err
	}
	if i := c.indexOf(id); i >= 0 {
		c.clearLocked(i)
		c.commitLocked(ctx)
	}
	c.log.Info(ctx, "code removed", "snippet_id", id)
	c.notify(ctx, LevelInfo, "Removed code block")
	return nil
}

// JumpToLocation moves the editor to a line of a file. Nothing is pushed.
func (c *Controller) JumpToLocation(ctx context.Context, filePath string, line int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.JumpToLocation(ctx, filePath, line)
}

// UpdateSnippets replaces the whole list with one edited by the UI.
func (c *Controller) UpdateSnippets(ctx context.Context, list []snippet.Snippet) error {
	if err := snippet.Validate(list); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snippets = snippet.CloneAll(list)
	c.commitLocked(ctx)
	return nil
}

// Reconcile resets inserted snippets whose block is gone from the recorded
// file. It reports whether anything changed.
func (c *Controller) Reconcile(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reconcileLocked(ctx) {
		return false
	}
	c.commitLocked(ctx)
	return true
}

func (c *Controller) reconcileLocked(ctx context.Context) bool {
	changed := false
	for i := range c.snippets {
		s := &c.snippets[i]
		if !s.IsInserted || s.LastInsertedAt == nil {
			continue
		}
		_, err := c.engine.LocateIn(ctx, s.LastInsertedAt.FilePath, s.ID)
		switch {
		case err == nil:
		case errors.Is(err, marker.ErrBlockNotFound), errors.Is(err, editor.ErrDocumentNotFound):
			c.log.Info(ctx, "inserted block gone, resetting snippet", "snippet_id", s.ID, "file", s.LastInsertedAt.FilePath)
			c.clearLocked(i)
			changed = true
		default:
			c.log.Warn(ctx, "reconcile snippet", "snippet_id", s.ID, "err", err)
		}
	}
	return changed
}

// Handle dispatches one inbound message. Failures are logged and reported to
// the client as notifications; only an unknown message type is returned.
func (c *Controller) Handle(ctx context.Context, msg Message) error {
	var err error
	switch msg.Type {
	case MsgReady:
		c.Ready(ctx)
	case MsgInsert:
		err = c.Insert(ctx, msg.SnippetID, msg.Code)
	case MsgJumpToLocation:
		target := msg.FilePath
		if target == "" {
			target = msg.FileName
		}
		err = c.JumpToLocation(ctx, target, msg.Line)
	case MsgUpdateSnippets:
		if msg.Snippets == nil {
			return nil
		}
		err = c.UpdateSnippets(ctx, msg.Snippets)
	case MsgRemoveCode:
		err = c.RemoveCode(ctx, msg.SnippetID)
	case MsgAddSnippet:
		_, err = c.Add(ctx, msg.Name, msg.Code)
	case MsgDeleteSnippet:
		err = c.Delete(ctx, msg.SnippetID)
	case MsgRetract:
		err = c.Retract(ctx, msg.SnippetID)
	default:
		return fmt.Errorf("%q: %w", msg.Type, ErrUnknownMessage)
	}
	if err != nil {
		c.log.Warn(ctx, "intent failed", "type", msg.Type, "snippet_id", msg.SnippetID, "err", err)
		c.notify(ctx, LevelError, UserMessage(err))
	}
	return nil
}

// UserMessage turns an intent error into text for the panel.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, editor.ErrNoActiveEditor):
		return "No active editor found"
	case errors.Is(err, marker.ErrBlockNotFound):
		return "Matching code block not found"
	case errors.Is(err, editor.ErrDocumentNotFound):
		return "Could not open the file"
	case errors.Is(err, inserter.ErrInvalidLocation):
		return "Could not move to the given location"
	case errors.Is(err, ErrAlreadyInserted):
		return "Snippet is already inserted"
	case errors.Is(err, ErrNotInserted):
		return "Snippet has not been inserted"
	case errors.Is(err, ErrSnippetNotFound):
		return "Snippet not found"
	case errors.Is(err, snippet.ErrEmptyName):
		return "Enter a snippet name"
	case errors.Is(err, snippet.ErrEmptyCode):
		return "Enter some code"
	case errors.Is(err, snippet.ErrDuplicateID),
		errors.Is(err, snippet.ErrInvalidID),
		errors.Is(err, snippet.ErrNoRecord),
		errors.Is(err, marker.ErrInvalidID):
		return "Invalid snippet list: " + err.Error()
	default:
		return "Operation failed"
	}
}

func (c *Controller) indexOf(id string) int {
	for i := range c.snippets {
		if c.snippets[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) clearLocked(i int) {
	c.snippets[i].IsInserted = false
	c.snippets[i].LastInsertedAt = nil
}

// commitLocked writes the list through to the store and pushes it. A failed
// write is logged; the in-memory list stays authoritative.
func (c *Controller) commitLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.snippets); err != nil {
		c.log.Error(ctx, "persist snippets", "err", err)
	}
	c.pushSnippets(ctx)
}
