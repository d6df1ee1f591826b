package agent

import (
	"context"
	"encoding/json"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/store"
	"voicebank-server/internal/transfer/processor"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
)

// TransferService resolves recipients and executes confirmed transfers.
type TransferService interface {
	Resolve(ctx context.Context, name string, auth banking.SessionAuth) ([]banking.RecipientCandidate, error)
	Execute(ctx context.Context, sessionID uuid.UUID, request banking.TransferRequest, auth banking.SessionAuth) (processor.TransferResult, error)
}

// CompletionNotifier signals the frontend that a transfer went through.
type CompletionNotifier interface {
	NotifyTransferCompleted(ctx context.Context, receipt json.RawMessage) error
}

// TranscriptStore persists conversation turns for a session.
type TranscriptStore interface {
	CreateTranscriptEntry(ctx context.Context, sessionID uuid.UUID, role string, content string) (store.TranscriptEntry, error)
}

// ChatModel is the completion endpoint the agent talks to.
type ChatModel interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}
