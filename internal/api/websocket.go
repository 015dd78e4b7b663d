package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrorMessage is sent back when a client message cannot be handled
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleWebSocket handles GET /api/v1/ws. Each connection drives one search
// box session: the client sends keystrokes and selections, the server pushes
// options and state snapshots.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan interface{}, sendBuffer)
	done := make(chan struct{})

	enqueue := func(msg interface{}) {
		select {
		case send <- msg:
		case <-done:
		default:
			h.logger.Warn("WebSocket send buffer full, dropping message")
		}
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(conn, send, done)
	}()

	session := h.service.NewSession(ctx, func(e service.Event) { enqueue(e) })
	state := h.service.State(ctx)
	enqueue(service.Event{Type: service.EventState, State: &state})

	h.logger.Debug("WebSocket session opened", zap.String("remote", r.RemoteAddr))
	h.readPump(conn, session, enqueue)

	session.Close()
	close(done)
	<-writerDone
	h.logger.Debug("WebSocket session closed", zap.String("remote", r.RemoteAddr))
}

func (h *Handler) readPump(conn *websocket.Conn, session *service.Session, enqueue func(interface{})) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg model.SessionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if err := h.validate.Struct(msg); err != nil {
			enqueue(ErrorMessage{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case model.MessageInput:
			session.Input(msg.Text)
		case model.MessageFocus:
			session.Focus()
		case model.MessageBlur:
			session.Blur()
		case model.MessageSelect:
			session.Select(*msg.Option)
		case model.MessageEnter:
			session.Enter()
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, send <-chan interface{}, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("WebSocket write error", zap.Error(err))
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
