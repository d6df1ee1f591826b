package processor

import (
	"context"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/store"
)

// BankAPI defines the banking service calls required by the processor
type BankAPI interface {
	// SearchRecipients looks up transfer recipients by free-text name
	SearchRecipients(ctx context.Context, name string, auth banking.SessionAuth) ([]banking.RecipientCandidate, error)

	// CreateTransfer submits a transfer and returns the raw response
	CreateTransfer(ctx context.Context, request banking.TransferRequest, auth banking.SessionAuth) (banking.TransferResponse, error)
}

// AuditStore records transfer attempts for observability. Failures to record
// are logged and never affect the transfer path.
type AuditStore interface {
	// RecordTransferAttempt persists one attempt outcome
	RecordTransferAttempt(ctx context.Context, params store.TransferAttemptParams) error
}
