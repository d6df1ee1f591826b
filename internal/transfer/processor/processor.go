// Package processor implements recipient resolution and transfer execution
// against the banking service.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/metrics"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrNoDestination is returned when neither recipient_id nor
	// to_account_id is set, or both are.
	ErrNoDestination = errors.New("exactly one of recipient_id or to_account_id must be set")
	// ErrInvalidScheduledAt is returned when scheduled_at is non-empty and
	// not a parseable timestamp.
	ErrInvalidScheduledAt = errors.New("scheduled_at must be an ISO-8601 timestamp")
)

// Default values applied to omitted optional fields.
const (
	DefaultCategory      = "Miscellaneous"
	DefaultReference     = "default"
	DefaultFromAccountID = "1"
)

// Outcome tags a TransferResult.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailure        Outcome = "failure"
	OutcomeTransportError Outcome = "transport_error"
	// OutcomeDecodeError means the service said 2xx but the receipt did not
	// parse: the transfer probably happened but the receipt is unreadable.
	OutcomeDecodeError Outcome = "decode_error"
)

// TransferResult is the tagged outcome of one transfer submission.
type TransferResult struct {
	Outcome    Outcome
	Receipt    json.RawMessage // set for OutcomeSuccess
	StatusCode int             // set for OutcomeFailure
	Body       string          // set for OutcomeFailure
	Detail     string          // set for transport and decode errors
}

// Processor resolves recipients and executes transfers. It performs no
// retries anywhere: a failed attempt requires the caller to build a brand-new
// request, and since the banking API has no idempotency key, retrying after a
// transport error can duplicate the transfer.
type Processor struct {
	bank   BankAPI
	audit  AuditStore
	logger *observability.Logger
}

// New creates a transfer processor
func New(bank BankAPI, audit AuditStore, logger *observability.Logger) *Processor {
	return &Processor{bank: bank, audit: audit, logger: logger}
}

// Resolve turns a free-text name into candidate recipients. Zero candidates
// is not an error; the caller maps it to a "not found" message. Multiple
// candidates must be disambiguated by the user before any transfer.
func (p *Processor) Resolve(ctx context.Context, name string, auth banking.SessionAuth) ([]banking.RecipientCandidate, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "recipient_query", Value: name})
	candidates, err := p.bank.SearchRecipients(ctx, name, auth)
	if err != nil {
		metrics.RecipientLookups.WithLabelValues("error").Inc()
		p.logger.Error(ctx, "recipient lookup failed", err)
		return nil, err
	}

	switch {
	case len(candidates) == 0:
		metrics.RecipientLookups.WithLabelValues("not_found").Inc()
	case len(candidates) == 1:
		metrics.RecipientLookups.WithLabelValues("found").Inc()
	default:
		metrics.RecipientLookups.WithLabelValues("ambiguous").Inc()
	}
	return candidates, nil
}

// Execute validates the request, applies defaults, and submits exactly one
// transfer. Validation failures return an error before any network call.
// Network outcomes are encoded in the TransferResult, never as an error.
func (p *Processor) Execute(ctx context.Context, sessionID uuid.UUID, request banking.TransferRequest, auth banking.SessionAuth) (TransferResult, error) {
	request, err := p.validate(request)
	if err != nil {
		metrics.TransferAttempts.WithLabelValues("validation_error").Inc()
		return TransferResult{}, err
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "transfer_amount", Value: request.Amount},
		observability.Field{Key: "transfer_destination", Value: destination(request)},
	)
	p.logger.Info(ctx, "submitting transfer")

	start := time.Now()
	resp, err := p.bank.CreateTransfer(ctx, request, auth)
	metrics.TransferDuration.Observe(time.Since(start).Seconds())

	var result TransferResult
	switch {
	case err != nil:
		result = TransferResult{Outcome: OutcomeTransportError, Detail: err.Error()}
	case resp.StatusCode == 200 || resp.StatusCode == 201:
		var receipt json.RawMessage
		if jsonErr := json.Unmarshal(resp.Body, &receipt); jsonErr != nil {
			// The remote accepted the transfer but we cannot read the
			// receipt. Reported distinctly so the caller knows the transfer
			// state is uncertain rather than rejected.
			result = TransferResult{Outcome: OutcomeDecodeError, Detail: jsonErr.Error()}
		} else {
			result = TransferResult{Outcome: OutcomeSuccess, Receipt: receipt}
		}
	default:
		result = TransferResult{Outcome: OutcomeFailure, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	metrics.TransferAttempts.WithLabelValues(string(result.Outcome)).Inc()
	p.recordAttempt(ctx, sessionID, request, result)
	return result, nil
}

// validate enforces the pre-submission rules and fills defaults. It returns
// the normalised request.
func (p *Processor) validate(request banking.TransferRequest) (banking.TransferRequest, error) {
	if request.ScheduledAt != "" {
		if !parseableTimestamp(request.ScheduledAt) {
			return request, fmt.Errorf("%w: %q", ErrInvalidScheduledAt, request.ScheduledAt)
		}
	}

	request.RecipientID = strings.TrimSpace(request.RecipientID)
	request.ToAccountID = strings.TrimSpace(request.ToAccountID)
	if (request.RecipientID == "") == (request.ToAccountID == "") {
		return request, ErrNoDestination
	}

	if request.FromAccountID == "" {
		request.FromAccountID = DefaultFromAccountID
	}
	if request.Category == "" {
		request.Category = DefaultCategory
	}
	if request.Reference == "" {
		request.Reference = DefaultReference
	}
	if request.Description == "" {
		request.Description = "Transfer payment to " + destination(request)
	}
	return request, nil
}

// parseableTimestamp accepts RFC 3339 (trailing Z included) and a plain
// ISO-8601 datetime without offset.
func parseableTimestamp(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse("2006-01-02T15:04:05", s)
	return err == nil
}

func destination(request banking.TransferRequest) string {
	if request.RecipientID != "" {
		return request.RecipientID
	}
	return request.ToAccountID
}

func (p *Processor) recordAttempt(ctx context.Context, sessionID uuid.UUID, request banking.TransferRequest, result TransferResult) {
	if p.audit == nil {
		return
	}
	err := p.audit.RecordTransferAttempt(ctx, store.TransferAttemptParams{
		SessionID:   sessionID,
		Amount:      request.Amount,
		Destination: destination(request),
		Outcome:     string(result.Outcome),
		StatusCode:  result.StatusCode,
		Detail:      result.Detail,
	})
	if err != nil {
		// Audit is observational; the transfer outcome stands either way.
		p.logger.Error(ctx, "failed to record transfer attempt", err)
	}
}
