package panel

import (
	"context"

	"code-inserter/snippet"
)

// SetClient registers the channel that receives events for the panel. If a
// previous client is connected it is kicked: its kick channel is closed so
// the transport can close that connection. Returns a kick channel that will
// be closed if this client is itself later displaced.
func (c *Controller) SetClient(ch chan Event) <-chan struct{} {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.kick != nil {
		close(c.kick)
	}
	kick := make(chan struct{})
	c.kick = kick
	c.out = ch
	return kick
}

// ClearClient is called when a connection ends. It only clears the client
// if ch is still the current one (a displaced connection must not clear a
// newer one). It always closes ch so the writer draining it exits.
func (c *Controller) ClearClient(ch chan Event) {
	c.outMu.Lock()
	if c.out == ch {
		c.out = nil
		c.kick = nil
	}
	c.outMu.Unlock()
	close(ch)
}

// Connected reports whether a panel client is attached.
func (c *Controller) Connected() bool {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return c.out != nil
}

// emit delivers ev to the current client without blocking. Events are
// dropped when no client is attached or its buffer is full.
func (c *Controller) emit(ctx context.Context, ev Event) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.out == nil {
		return
	}
	select {
	case c.out <- ev:
	default:
		c.log.Warn(ctx, "panel client too slow, event dropped", "type", ev.Type)
	}
}

func (c *Controller) pushSnippets(ctx context.Context) {
	c.emit(ctx, Event{Type: EventLoadSnippets, Snippets: snippet.CloneAll(c.snippets)})
}

func (c *Controller) notify(ctx context.Context, level, msg string) {
	c.emit(ctx, Event{Type: EventNotification, Level: level, Message: msg})
}
