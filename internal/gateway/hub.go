package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ashmelev/frostline/internal/event"
)

const writeTimeout = 2 * time.Second

// Hub fans simulation events out to connected websocket clients. A client
// that cannot keep up is dropped; the simulation tick never blocks on a
// slow socket longer than the write timeout.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Publish encodes one simulation event and broadcasts it. Wired as a sim
// subscriber; runs on the simulation goroutine.
func (h *Hub) Publish(ev event.Event) {
	f, ok := toFrame(ev)
	if !ok {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		slog.Warn("failed to encode event frame", "type", f.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Info("dropping slow or closed client", "err", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// add registers a connection for broadcasts.
func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// remove drops a connection. Safe to call after the hub already dropped it.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
