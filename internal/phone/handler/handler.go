// Package handler answers inbound phone calls and runs their media streams.
package handler

import (
	"context"
	"fmt"
	"net/http"

	"voicebank-server/internal/apierrors"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/phone/processor"
	"voicebank-server/internal/phone/twilio"
	"voicebank-server/internal/store"
	"voicebank-server/internal/voice/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/twilio/twilio-go/twiml"
)

// SessionStore persists session lifecycle rows.
type SessionStore interface {
	CreateSession(ctx context.Context, channel string, language string) (store.Session, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

type Handler struct {
	processor *processor.PhoneProcessor
	sessions  SessionStore
	streamURL string
	logger    *observability.Logger
}

// New creates the phone handler. streamURL is the public wss:// address
// Twilio connects media streams to.
func New(p *processor.PhoneProcessor, sessions SessionStore, streamURL string, logger *observability.Logger) Handler {
	return Handler{processor: p, sessions: sessions, streamURL: streamURL, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Twilio connects server-to-server with no browser origin.
		return true
	},
}

// HandleAnswer returns the TwiML that connects the call to our media stream.
func (h *Handler) HandleAnswer(c *gin.Context) {
	ctx := c.Request.Context()
	if h.streamURL == "" {
		apierrors.ServiceUnavailable(c, "PHONE_DISABLED", "Phone channel is not configured", nil)
		return
	}

	say := &twiml.VoiceSay{
		Message: "Hello! Connecting you to your banking assistant. One moment please.",
	}
	stream := twiml.VoiceStream{
		Name: "voicebank-stream",
		Url:  h.streamURL,
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{stream},
	}

	result, err := twiml.Voice([]twiml.Element{say, connect})
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	h.logger.Info(ctx, fmt.Sprintf("answering call, stream URL %s", h.streamURL))
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, result)
}

// HandleMediaStream runs one call's media stream: Twilio on the caller side
// of the pipeline, the live voice provider on the other.
func (h *Handler) HandleMediaStream(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()

	// Phone callers get English until in-call language selection exists.
	language := lang.DefaultLanguage

	sessionID := uuid.New()
	if h.sessions != nil {
		session, err := h.sessions.CreateSession(ctx, store.ChannelPhone, string(language))
		if err != nil {
			h.logger.Error(ctx, "failed to persist call session, continuing without row", err)
		} else {
			sessionID = session.ID
		}
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID.String()},
		observability.Field{Key: "channel", Value: store.ChannelPhone},
	)
	h.logger.Info(ctx, "phone media stream connected")
	defer h.endSession(ctx, sessionID)

	stream := twilio.NewStreamHandler(conn, h.logger)
	defer stream.Stop()

	callerIn := make(chan []byte, 4096)
	callerOut := make(chan []byte, 4096)

	audioPipeline, err := pipeline.New(callerIn, callerOut, 4096, h.logger)
	if err != nil {
		h.logger.Error(ctx, "failed to create audio pipeline", err)
		return
	}
	defer audioPipeline.Stop()

	providerIn, providerOut := h.processor.StartVoiceSession(ctx, sessionID, language)
	if err := audioPipeline.ConnectProvider(providerIn, providerOut); err != nil {
		h.logger.Error(ctx, "failed to connect voice provider", err)
		return
	}
	if err := audioPipeline.Start(ctx); err != nil {
		h.logger.Error(ctx, "failed to start audio pipeline", err)
		return
	}

	stream.Start(ctx, callerIn, callerOut)

	// Wait on the stream's own done signal: the request context is not
	// cancelled after the WebSocket hijack, so a hangup only surfaces
	// through the receive pump exiting.
	select {
	case <-stream.Done():
	case <-ctx.Done():
	}
	stats := audioPipeline.GetStats()
	h.logger.Info(ctx, fmt.Sprintf("call ended: %d bytes from caller, %d bytes to caller",
		stats.BytesFromCaller, stats.BytesToCaller))
}

func (h *Handler) endSession(ctx context.Context, sessionID uuid.UUID) {
	if h.sessions == nil {
		return
	}
	if err := h.sessions.EndSession(ctx, sessionID); err != nil {
		h.logger.Error(ctx, "failed to end call session row", err)
	}
}
