package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trailgo/pkg/paths"
)

const (
	streamBuffer     = 64
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// EventSource is implemented by paths.Service.
type EventSource interface {
	Subscribe(buffer int) (<-chan paths.Event, func())
}

// StreamMessage is the envelope sent to websocket clients.
type StreamMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id,omitempty"`
	PathID   int64  `json:"path_id,omitempty"`
}

// StreamHandler pushes path change events to websocket clients.
type StreamHandler struct {
	source   EventSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(source EventSource) *StreamHandler {
	return &StreamHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local service, any origin
			},
		},
		logger: slog.With("component", "stream"),
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Debug("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	log := h.logger.With("client_id", clientID)
	log.Info("Stream client connected", "remote_addr", r.RemoteAddr)

	events, cancel := h.source.Subscribe(streamBuffer)
	defer cancel()

	// Detach from the request context; hijacked connections outlive it
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go h.readPump(conn, stop)

	if err := h.write(conn, StreamMessage{Type: "hello", ClientID: clientID}); err != nil {
		log.Debug("Failed to greet stream client", "error", err)
		return
	}

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stream client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(streamWriteWait))
				return
			}
			if err := h.write(conn, StreamMessage{Type: string(ev.Type), PathID: ev.PathID}); err != nil {
				log.Debug("Stream write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}

// readPump drains client frames so control messages are processed and calls
// stop once the connection is closed.
func (h *StreamHandler) readPump(conn *websocket.Conn, stop func()) {
	defer stop()
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Stream read error", "error", err)
			}
			return
		}
	}
}
