// Package handler exposes the app voice session over a WebSocket: the
// client streams transcribed utterances up and receives spoken replies and
// out-of-band topic events back on the same connection.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"voicebank-server/internal/agent"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/notify"
	"voicebank-server/internal/observability"
	sessionProcessor "voicebank-server/internal/session/processor"
	"voicebank-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionStore persists session lifecycle rows.
type SessionStore interface {
	CreateSession(ctx context.Context, channel string, language string) (store.Session, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

type Handler struct {
	agent    *agent.Agent
	sessions SessionStore
	logger   *observability.Logger
}

func New(a *agent.Agent, sessions SessionStore, logger *observability.Logger) Handler {
	return Handler{agent: a, sessions: sessions, logger: logger}
}

// upgrader is a shared WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Add proper origin validation for production
		return true
	},
}

// inboundMessage is a client frame after the metadata handshake.
type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// outboundMessage is a server frame.
type outboundMessage struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsChannel serializes writes to one connection and doubles as the
// session's data channel for topic events.
type wsChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsChannel) send(msg outboundMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(msg)
}

func (w *wsChannel) Publish(_ context.Context, topic string, payload json.RawMessage) error {
	return w.send(outboundMessage{Type: "topic", Topic: topic, Payload: payload})
}

// HandleSession runs one app voice session. The first client frame is the
// raw session metadata; every later frame is an utterance.
func (h *Handler) HandleSession(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()

	_, rawMetadata, err := conn.ReadMessage()
	if err != nil {
		h.logger.Error(ctx, "failed to read session metadata", err)
		return
	}

	// The validated session token carries a language preference; explicit
	// metadata still overrides it.
	defaultLanguage := lang.DefaultLanguage
	if grant, ok := sessionProcessor.GrantFromContext(c); ok {
		defaultLanguage = grant.Language
	}
	auth, language := agent.ParseMetadata(string(rawMetadata), defaultLanguage)

	sessionID := uuid.New()
	if h.sessions != nil {
		session, err := h.sessions.CreateSession(ctx, store.ChannelApp, string(language))
		if err != nil {
			h.logger.Error(ctx, "failed to persist session, continuing without row", err)
		} else {
			sessionID = session.ID
		}
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID.String()},
		observability.Field{Key: "language", Value: string(language)},
		observability.Field{Key: "access_token", Value: observability.RedactToken(auth.AccessToken)},
	)
	h.logger.Info(ctx, "app voice session started")
	defer h.endSession(ctx, sessionID)

	channel := &wsChannel{conn: conn}
	conv := h.agent.NewConversation(sessionID, language, auth, notify.New(channel, h.logger))

	if err := channel.send(outboundMessage{Type: "greeting", Text: h.agent.Greeting(conv)}); err != nil {
		h.logger.Error(ctx, "failed to send greeting", err)
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info(ctx, "session closed by client")
			} else {
				h.logger.Error(ctx, "WebSocket read error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Error(ctx, "failed to parse client frame", err)
			continue
		}

		switch msg.Type {
		case "utterance":
			reply, err := h.agent.HandleUtterance(ctx, conv, msg.Text)
			if err != nil {
				h.logger.Error(ctx, "failed to handle utterance", err)
				if sendErr := channel.send(outboundMessage{Type: "error", Text: "Something went wrong. Please try again."}); sendErr != nil {
					return
				}
				continue
			}
			if err := channel.send(outboundMessage{Type: "reply", Text: reply}); err != nil {
				h.logger.Error(ctx, "failed to send reply", err)
				return
			}
		case "end":
			h.logger.Info(ctx, "session ended by client")
			return
		default:
			h.logger.Warn(ctx, "unknown client frame type")
		}
	}
}

func (h *Handler) endSession(ctx context.Context, sessionID uuid.UUID) {
	if h.sessions == nil {
		return
	}
	if err := h.sessions.EndSession(ctx, sessionID); err != nil {
		h.logger.Error(ctx, "failed to end session row", err)
	}
}
