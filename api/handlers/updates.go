package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UpdateEvent is the only message sent over /ws/updates. It carries no data,
// clients re-query whatever they display.
const UpdateEvent = `{"event":"ds:update"}`

const writeWait = 5 * time.Second

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// updateListener is one connected socket. Its writer goroutine drains send,
// so a slow socket never holds up Broadcast.
type updateListener struct {
	conn *websocket.Conn
	send chan []byte
}

// UpdateHub keeps the connected update listeners
type UpdateHub struct {
	clients map[*updateListener]struct{}
	mutex   sync.Mutex
}

// NewUpdateHub returns an empty hub
func NewUpdateHub() *UpdateHub {
	return &UpdateHub{clients: make(map[*updateListener]struct{})}
}

// ServeHTTP upgrades the request and registers the connection until it closes
func (h *UpdateHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}

	l := &updateListener{conn: conn, send: make(chan []byte, 1)}
	h.add(l)
	zap.S().Debugw("update listener connected", "remote", r.RemoteAddr)

	go h.writePump(l)

	// read until the client goes away, incoming messages are ignored
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.remove(l)
			break
		}
	}
}

func (h *UpdateHub) writePump(l *updateListener) {
	defer l.conn.Close()
	for msg := range l.send {
		l.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := l.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			zap.S().Debugw("dropping update listener", "error", err)
			h.remove(l)
			return
		}
	}
	l.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
}

// Broadcast queues the update event for every listener. A listener that
// still has an event queued already owes its client a re-query, so nothing
// more is queued for it.
func (h *UpdateHub) Broadcast() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for l := range h.clients {
		select {
		case l.send <- []byte(UpdateEvent):
		default:
		}
	}
}

// Count returns the number of connected listeners
func (h *UpdateHub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects every listener
func (h *UpdateHub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for l := range h.clients {
		close(l.send)
		delete(h.clients, l)
	}
}

func (h *UpdateHub) add(l *updateListener) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[l] = struct{}{}
}

// remove unregisters l and stops its writer; it is safe to call more than once
func (h *UpdateHub) remove(l *updateListener) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[l]; ok {
		close(l.send)
		delete(h.clients, l)
	}
}
