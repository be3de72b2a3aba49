package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
	"github.com/embedfarm/wifid/internal/wifi"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Buffered events per subscriber; slow consumers lose the oldest
	eventBacklog = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API binds to loopback; cross-origin browsers are not a concern.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventMessage is one connectivity change on the /api/v1/events stream.
type EventMessage struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// handleEvents upgrades to WebSocket and streams connectivity change
// notifications until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "events_subscribed")

	events := make(chan wifi.Notification, eventBacklog)
	cancel := s.manager.OnChange(func(n wifi.Notification) {
		select {
		case events <- n:
		default:
			// Subscriber is not keeping up; drop rather than block
			// the dispatch goroutine.
		}
	})

	defer func() {
		cancel()
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "events_closed")
	}()

	// Reader goroutine: we never expect data, but reading is required to
	// notice close frames and to process pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case n := <-events:
			msg := EventMessage{Event: n.String(), Timestamp: time.Now()}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logging.Debug("Events write failed, dropping subscriber",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
