// Package twilio bridges a Twilio media-stream WebSocket to the audio
// pipeline. Frames carry base64 mu-law at 8kHz in both directions.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"voicebank-server/internal/observability"
	"voicebank-server/internal/voice/audio"

	"github.com/gorilla/websocket"
)

// MediaEvent is the frame shape Twilio sends on a media stream.
type MediaEvent struct {
	Event string `json:"event"`
	Start struct {
		StreamSid string `json:"streamSid"`
		CallSid   string `json:"callSid"`
	} `json:"start,omitempty"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media,omitempty"`
	Stop struct {
		StreamSid string `json:"streamSid"`
	} `json:"stop,omitempty"`
}

// StreamHandler pumps audio between one Twilio connection and the caller
// channels of a pipeline.
type StreamHandler struct {
	conn      *websocket.Conn
	logger    *observability.Logger
	streamSid string
	writeMu   sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewStreamHandler(conn *websocket.Conn, logger *observability.Logger) *StreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamHandler{conn: conn, logger: logger, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Start launches the receive and send pumps. audioIn receives caller audio
// and is closed when the stream stops; audioOut carries agent audio back.
func (h *StreamHandler) Start(ctx context.Context, audioIn chan<- []byte, audioOut <-chan []byte) {
	handlerCtx, cancel := context.WithCancel(ctx)
	h.ctx = handlerCtx
	oldCancel := h.cancel
	h.cancel = func() {
		cancel()
		oldCancel()
	}

	go h.sendToCaller(audioOut)
	go h.receiveFromCaller(audioIn)
}

func (h *StreamHandler) receiveFromCaller(audioIn chan<- []byte) {
	// The request context is dead after the WebSocket hijack, so the done
	// channel is the only reliable end-of-call signal for the handler.
	defer close(h.done)
	defer close(audioIn)

	for {
		select {
		case <-h.ctx.Done():
			return
		default:
		}

		_, msg, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info(h.ctx, "media stream closed normally")
			} else {
				h.logger.Error(h.ctx, "media stream read error", err)
			}
			return
		}

		var event MediaEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			h.logger.Error(h.ctx, "failed to parse media event", err)
			continue
		}

		switch event.Event {
		case "start":
			h.streamSid = event.Start.StreamSid
			h.logger.Info(h.ctx, fmt.Sprintf("media stream started: %s", h.streamSid))

		case "media":
			payload, err := audio.DecodeBase64(event.Media.Payload)
			if err != nil {
				h.logger.Error(h.ctx, "failed to decode media payload", err)
				continue
			}
			select {
			case audioIn <- payload:
			case <-h.ctx.Done():
				return
			default:
				h.logger.Warn(h.ctx, "caller audio buffer full, dropping chunk")
			}

		case "stop":
			h.logger.Info(h.ctx, fmt.Sprintf("media stream stopped: %s", event.Stop.StreamSid))
			return
		}
	}
}

func (h *StreamHandler) sendToCaller(audioOut <-chan []byte) {
	for {
		select {
		case <-h.ctx.Done():
			return

		case chunk, ok := <-audioOut:
			if !ok {
				h.logger.Info(h.ctx, "agent audio channel closed")
				return
			}

			frame, err := json.Marshal(map[string]any{
				"event":     "media",
				"streamSid": h.streamSid,
				"media":     map[string]string{"payload": audio.EncodeBase64(chunk)},
			})
			if err != nil {
				h.logger.Error(h.ctx, "failed to marshal media frame", err)
				continue
			}

			h.writeMu.Lock()
			err = h.conn.WriteMessage(websocket.TextMessage, frame)
			h.writeMu.Unlock()
			if err != nil {
				h.logger.Error(h.ctx, "failed to send media frame", err)
				return
			}
		}
	}
}

// Stop cancels the pumps and closes the connection.
func (h *StreamHandler) Stop() {
	h.cancel()

	h.writeMu.Lock()
	_ = h.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	h.writeMu.Unlock()
	h.conn.Close()
}

// Done is closed when the receive pump exits: the caller hung up, the
// stream sent its stop event, or the handler was stopped.
func (h *StreamHandler) Done() <-chan struct{} {
	return h.done
}

// StreamSID returns the Twilio stream identifier once the start event has
// arrived.
func (h *StreamHandler) StreamSID() string {
	return h.streamSid
}
