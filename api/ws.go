package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"code-inserter/panel"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePanelWS connects a panel UI. Only one panel is active at a time; a
// new connection displaces the previous one.
func (h *handler) handlePanelWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(ctx, "ws upgrade", "err", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(ev panel.Event) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(ev)
	}

	outChan := make(chan panel.Event, 256)
	kick := h.ctrl.SetClient(outChan) // kicks any prior panel
	defer h.ctrl.ClearClient(outChan) // closes outChan if still owner or not

	// Goroutine: pump controller events to the panel.
	// Exits when ClearClient closes outChan.
	go func() {
		for ev := range outChan {
			if err := writeMsg(ev); err != nil {
				return
			}
		}
	}()

	// Goroutine: close the connection when displaced so ReadMessage below
	// unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-kick:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	h.ctrl.Ready(ctx)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Panel closed, or displaced by a newer one.
			return
		}
		var msg panel.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn(ctx, "malformed panel message", "err", err)
			continue
		}
		if err := h.ctrl.Handle(ctx, msg); err != nil {
			if errors.Is(err, panel.ErrUnknownMessage) {
				h.log.Debug(ctx, "ignoring panel message", "type", msg.Type)
				continue
			}
			h.log.Warn(ctx, "panel message", "type", msg.Type, "err", err)
		}
	}
}
