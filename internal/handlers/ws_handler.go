package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/orientanurag/upnext-mvp/internal/services"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients connect from the screen and guest pages on other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler bridges the broadcaster to websocket clients. Each connection
// receives the full snapshot as its first frame, then every delta in version
// order until it disconnects or falls too far behind.
type WSHandler struct {
	broadcaster *services.Broadcaster
}

func NewWSHandler(broadcaster *services.Broadcaster) *WSHandler {
	return &WSHandler{broadcaster: broadcaster}
}

// Serve upgrades the connection and streams updates
// @Summary Realtime updates
// @Description Websocket stream: one snapshot frame, then bid and slot deltas
// @Tags realtime
// @Router /ws [get]
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	sub, err := h.broadcaster.Subscribe(r.Context())
	if err != nil {
		log.Printf("[WS] Subscribe failed: %v", err)
		conn.Close()
		return
	}

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// writePump owns all writes on the connection, including pings.
func (h *WSHandler) writePump(conn *websocket.Conn, sub *services.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case update, ok := <-sub.Updates():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// Dropped by the broadcaster or unsubscribed.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects via pong deadlines.
func (h *WSHandler) readPump(conn *websocket.Conn, sub *services.Subscriber) {
	defer func() {
		h.broadcaster.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
	}
}
