package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// StateFeed pushes the latest tick result to WebSocket clients.
type StateFeed struct {
	source   StateSource
	interval time.Duration
}

// NewStateFeed creates a feed that samples source every interval.
func NewStateFeed(source StateSource, interval time.Duration) *StateFeed {
	return &StateFeed{source: source, interval: interval}
}

// ServeHTTP upgrades the request and writes state messages until the client
// goes away.
func (f *StateFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Reads only detect the close; clients have nothing to say.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		msg := map[string]any{
			"result":    f.source.Last(),
			"timestamp": time.Now().UnixMilli(),
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return
		}

		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
