package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dashgen/internal/logger"
)

const writeWait = 5 * time.Second

// Hub tracks live-reload websocket clients
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	log      *logger.Logger
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
		log:     logger.Component("hub"),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.log.Debug("client connected", logger.Fields{"remote": r.RemoteAddr})

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		h.log.Debug("client disconnected", logger.Fields{"remote": r.RemoteAddr})
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", logger.Fields{"error": err.Error()})
			}
			return
		}

		switch msg["type"] {
		case "HELLO":
			h.send(conn, map[string]interface{}{"type": "ACK"})
		default:
			h.log.Debug("unknown websocket message", logger.Fields{"type": msg["type"]})
		}
	}
}

// send writes to one client. Writes are serialized by the exclusive lock.
func (h *Hub) send(conn *websocket.Conn, message map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message); err != nil {
		h.log.Warn("failed to send message", logger.Fields{"error": err.Error()})
	}
}

// Broadcast sends {"type": MSGTYPE, ...data} to every client
func (h *Hub) Broadcast(msgType string, data map[string]interface{}) {
	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(message); err != nil {
			h.log.Warn("failed to send message to client", logger.Fields{"error": err.Error()})
		}
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		client.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

// LiveReloadScript reloads the page when the server broadcasts RELOAD
const LiveReloadScript = `(function(){if(!window.WebSocket)return;var proto=location.protocol==='https:'?'wss://':'ws://';function connect(){var ws=new WebSocket(proto+location.host+'/ws');ws.onopen=function(){ws.send(JSON.stringify({type:'HELLO'}));};ws.onmessage=function(e){var msg=JSON.parse(e.data);if(msg.type==='RELOAD'){location.reload();}};ws.onclose=function(){setTimeout(connect,2000);};}connect();})();`
