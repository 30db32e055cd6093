package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"moodchat/backend/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The dev frontend runs on a different port; origin checks belong to
	// the reverse proxy in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundMessage is the only client-to-server message shape on the push
// channel.
type inboundMessage struct {
	Message string `json:"message"`
}

// wsSession fans events from the chat path and any in-flight theme tasks
// onto a single websocket. Gorilla connections allow one concurrent writer,
// so all events funnel through the out channel into one write loop.
//
// Send never blocks forever: once the session is closed it reports false and
// drops the event, which is the best-effort delivery the theme path wants —
// a closed tab must not abort theme persistence.
type wsSession struct {
	conn *websocket.Conn
	out  chan model.Event
	done chan struct{}
	once sync.Once
}

func newWSSession(conn *websocket.Conn) *wsSession {
	return &wsSession{
		conn: conn,
		out:  make(chan model.Event, 16),
		done: make(chan struct{}),
	}
}

// Send implements service.Notifier.
func (s *wsSession) Send(event model.Event) bool {
	select {
	case s.out <- event:
		return true
	case <-s.done:
		return false
	}
}

func (s *wsSession) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *wsSession) writeLoop() {
	for {
		select {
		case event := <-s.out:
			if err := s.conn.WriteJSON(event); err != nil {
				slog.Debug("Websocket write failed, closing session", "error", err)
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// HandleWebSocket is the push-channel endpoint. One connection serves one
// conversation; inbound user messages are processed strictly in order, so
// the start/chunk/end events of a turn are never interleaved with another
// turn's. Theme events may arrive at any point after the turn that
// triggered them.
func (h *ConversationHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	// Reject unknown conversations before upgrading.
	if _, err := h.service.GetFullConversation(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	session := newWSSession(conn)
	go session.writeLoop()

	slog.Info("Websocket connected", "conversation_id", conversationID)
	defer func() {
		session.close()
		if err := conn.Close(); err != nil {
			slog.Debug("Websocket close failed", "error", err)
		}
		slog.Info("Websocket disconnected", "conversation_id", conversationID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("Websocket read failed", "conversation_id", conversationID, "error", err)
			}
			return
		}

		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil || inbound.Message == "" {
			session.Send(model.Event{Type: model.EventError, Message: "Invalid message payload"})
			continue
		}

		// The request context dies with the HTTP handler on some servers
		// once the connection is hijacked, so turns run on their own
		// context. The turn blocks this read loop by design: it is what
		// guarantees per-turn event ordering.
		if err := h.service.HandleUserMessage(context.Background(), conversationID, inbound.Message, session); err != nil {
			slog.Warn("Turn failed", "conversation_id", conversationID, "error", err)
		}
	}
}
