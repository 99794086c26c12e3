package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/utils"
)

const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before being
	// considered dead; pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames; events are small.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access control is the join code, not the Origin header.
		return true
	},
}

// ServeWS upgrades the request and runs the connection: the write loop in
// its own goroutine, the read loop on the handler goroutine so the request
// context stays alive for storage calls.
func ServeWS(h *Hub, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", logger.Error(err))
			return
		}

		s := h.NewSession()
		log.Debug("realtime connection opened", logger.String("session_id", s.ID()))

		go writeLoop(conn, s, log)
		readLoop(r.Context(), h, conn, s, log)
	}
}

func readLoop(ctx context.Context, h *Hub, conn *websocket.Conn, s *Session, log logger.Logger) {
	defer func() {
		h.Disconnect(s)
		utils.Close(conn)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("realtime connection error",
					logger.String("session_id", s.ID()),
					logger.Error(err))
			}
			return
		}
		dispatch(ctx, h, s, evt, log)
	}
}

// dispatch isolates a panicking handler to its own connection.
func dispatch(ctx context.Context, h *Hub, s *Session, evt Event, log logger.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("recovered panic in event handler (session %s, type %s): %v",
				s.ID(), evt.Type, rec)
		}
	}()
	h.Dispatch(ctx, s, evt)
}

func writeLoop(conn *websocket.Conn, s *Session, log logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		utils.Close(conn)
	}()

	for {
		select {
		case evt := <-s.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.Debug("realtime write failed",
					logger.String("session_id", s.ID()),
					logger.Error(err))
				return
			}

		case <-s.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
