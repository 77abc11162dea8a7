package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/broadcast"
	"live-quiz-service/internal/domain"
)

const (
	defaultWriteTimeout = 5 * time.Second
	sendBufferSize      = 16
)

var errSubscriberStalled = errors.New("subscriber send buffer full")

// WSHandler upgrades connections into hub subscribers. Clients send nothing
// meaningful; inbound frames are drained to detect disconnects.
type WSHandler struct {
	service      *app.Service
	hub          *broadcast.Hub
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

func NewWSHandler(service *app.Service, hub *broadcast.Hub, writeTimeout time.Duration, logger *slog.Logger) *WSHandler {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &WSHandler{
		service:      service,
		hub:          hub,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// wsSubscriber adapts a websocket connection to broadcast.Subscriber. Send
// only enqueues; a single writer goroutine owns the connection, so writes
// are never concurrent. A full buffer means the peer has stalled and the
// send fails fast instead of waiting.
type wsSubscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (s *wsSubscriber) Send(data []byte) error {
	select {
	case <-s.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return websocket.ErrCloseSent
	default:
		return errSubscriberStalled
	}
}

func (s *wsSubscriber) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
	return nil
}

// ServeWS registers the connection with the hub, replays the current
// leaderboard so a reconnecting client resyncs immediately, then blocks on
// the read loop until the peer goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	sub := newWSSubscriber(conn)
	go h.writeLoop(sub)

	h.hub.Register(sub)
	h.logger.Info("ws client connected", "remote", conn.RemoteAddr().String())

	initial := domain.LeaderboardUpdateEvent{
		Type:        domain.EventLeaderboardUpdate,
		Leaderboard: h.service.Leaderboard(),
	}
	if data, err := json.Marshal(initial); err == nil {
		_ = sub.Send(data)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		// Client frames carry no commands; reading only detects disconnect.
	}

	h.hub.Unregister(sub)
	_ = sub.Close()
	h.logger.Info("ws client disconnected", "remote", conn.RemoteAddr().String())
}

func (h *WSHandler) writeLoop(sub *wsSubscriber) {
	for {
		select {
		case data := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Unregister(sub)
				_ = sub.Close()
				return
			}
		case <-sub.done:
			return
		}
	}
}
