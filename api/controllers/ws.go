package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nexusmarket/backend/internal/inventory"
	"github.com/nexusmarket/backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Stock levels are public data, so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// InventoryWS upgrades the connection and streams inventory events until the
// client disconnects.
func InventoryWS(hub *inventory.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			http.Error(w, "inventory stream unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"error": err.Error()}), "websocket upgrade failed")
			}
			return
		}

		sub := hub.Subscribe(conn)

		// Inbound frames are discarded; the read loop only detects closure.
		go func() {
			defer hub.Unsubscribe(sub)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
