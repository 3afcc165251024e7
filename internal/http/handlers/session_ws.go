package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sistemacitas/consola/internal/http/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The session cookie is the credential here; cross-origin pages
	// cannot read the socket's messages anyway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsPingInterval = 30 * time.Second

// WatchSession upgrades to a websocket and notifies the browser when
// its session is revoked elsewhere, so open tabs return to the login
// screen instead of failing on their next click.
func (c *Console) WatchSession(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r.Context())
	if sid == "" {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	revoked := c.sessions.Watch(r.Context())
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	// Drain client frames so close/pong handling works; the console
	// never sends data upstream on this socket.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case revokedSID, ok := <-revoked:
			if !ok {
				return
			}
			if revokedSID != sid {
				continue
			}
			_ = conn.WriteJSON(map[string]string{"event": "session_revoked"})
			return
		}
	}
}
