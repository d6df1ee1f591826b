package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"voicebank-server/internal/observability"
)

type fakeChannel struct {
	topic   string
	payload json.RawMessage
	err     error
}

func (f *fakeChannel) Publish(ctx context.Context, topic string, payload json.RawMessage) error {
	f.topic = topic
	f.payload = payload
	return f.err
}

func TestNotifyTransferCompleted_EmitsEnvelope(t *testing.T) {
	channel := &fakeChannel{}
	n := New(channel, observability.NewLogger())

	receipt := json.RawMessage(`{"id":"tx1","status":"completed"}`)
	if err := n.NotifyTransferCompleted(context.Background(), receipt); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if channel.topic != "flutter_updates" {
		t.Errorf("expected flutter_updates topic, got %q", channel.topic)
	}

	var envelope Envelope
	if err := json.Unmarshal(channel.payload, &envelope); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if envelope.Event != "transfer_completed" {
		t.Errorf("expected transfer_completed event, got %q", envelope.Event)
	}
	if string(envelope.Data) != `{"id":"tx1","status":"completed"}` {
		t.Errorf("unexpected data: %s", envelope.Data)
	}
}

func TestNotifyTransferCompleted_PublishFailureIsSoft(t *testing.T) {
	channel := &fakeChannel{err: errors.New("channel closed")}
	n := New(channel, observability.NewLogger())

	err := n.NotifyTransferCompleted(context.Background(), json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected a soft error to report")
	}
}
