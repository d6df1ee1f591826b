// Package notify signals transfer completion to a connected frontend over
// the session's data channel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"voicebank-server/internal/observability"
)

// TopicFlutterUpdates is the out-of-band channel topic the frontend listens
// on for agent events.
const TopicFlutterUpdates = "flutter_updates"

// EventTransferCompleted is the envelope event name for a successful transfer.
const EventTransferCompleted = "transfer_completed"

// DataChannel publishes a message on a named topic of the session's
// real-time channel. The WebSocket session implements this.
type DataChannel interface {
	Publish(ctx context.Context, topic string, payload json.RawMessage) error
}

// Envelope is the wire shape of a completion event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Notifier emits transfer completion events. Notification is fire-and-forget
// relative to the conversation: a failure here never undoes or retries the
// completed transfer.
type Notifier struct {
	channel DataChannel
	logger  *observability.Logger
}

// New creates a Notifier bound to one session's data channel
func New(channel DataChannel, logger *observability.Logger) *Notifier {
	return &Notifier{channel: channel, logger: logger}
}

// NotifyTransferCompleted wraps the parsed receipt in the completion envelope
// and publishes it on the flutter_updates topic. The returned error is a
// soft warning for the caller's logs, not a user-facing transfer failure.
func (n *Notifier) NotifyTransferCompleted(ctx context.Context, receipt json.RawMessage) error {
	payload, err := json.Marshal(Envelope{Event: EventTransferCompleted, Data: receipt})
	if err != nil {
		return fmt.Errorf("failed to marshal completion event: %w", err)
	}

	if err := n.channel.Publish(ctx, TopicFlutterUpdates, payload); err != nil {
		n.logger.Warn(observability.WithFields(ctx,
			observability.Field{Key: "event", Value: EventTransferCompleted},
		), "failed to publish completion event")
		return fmt.Errorf("failed to publish completion event: %w", err)
	}
	return nil
}
