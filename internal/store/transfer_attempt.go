package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// TransferAttempt is an audit row for one transfer submission. The
// conversation flow never reads these back; each attempt is a fresh request.
type TransferAttempt struct {
	ID          uuid.UUID      `db:"id"`
	SessionID   uuid.UUID      `db:"session_id"`
	Amount      string         `db:"amount"`
	Destination string         `db:"destination"`
	Outcome     string         `db:"outcome"`
	StatusCode  sql.NullInt32  `db:"status_code"`
	Detail      sql.NullString `db:"detail"`
	CreatedAt   string         `db:"created_at"`
}

// TransferAttemptParams are the inputs for recording one attempt.
type TransferAttemptParams struct {
	SessionID   uuid.UUID
	Amount      string
	Destination string
	Outcome     string
	StatusCode  int
	Detail      string
}

const sqlRecordTransferAttempt = `
INSERT INTO transfer_attempts (session_id, amount, destination, outcome, status_code, detail)
VALUES ($1, $2, $3, $4, $5, $6)`

func (s *Store) RecordTransferAttempt(ctx context.Context, params TransferAttemptParams) error {
	var statusCode sql.NullInt32
	if params.StatusCode != 0 {
		statusCode = sql.NullInt32{Int32: int32(params.StatusCode), Valid: true}
	}
	var detail sql.NullString
	if params.Detail != "" {
		detail = sql.NullString{String: params.Detail, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, sqlRecordTransferAttempt,
		params.SessionID, params.Amount, params.Destination, params.Outcome, statusCode, detail)
	if err != nil {
		s.logger.Error(ctx, "failed to record transfer attempt", err)
		return fmt.Errorf("failed to record transfer attempt: %w", err)
	}
	return nil
}

const sqlGetTransferAttemptsBySessionID = `
SELECT * FROM transfer_attempts WHERE session_id = $1 ORDER BY created_at`

func (s *Store) GetTransferAttemptsBySessionID(ctx context.Context, sessionID uuid.UUID) ([]TransferAttempt, error) {
	var attempts []TransferAttempt
	err := s.db.SelectContext(ctx, &attempts, sqlGetTransferAttemptsBySessionID, sessionID)
	if err != nil {
		s.logger.Error(ctx, "failed to get transfer attempts", err)
		return nil, fmt.Errorf("failed to get transfer attempts: %w", err)
	}
	return attempts, nil
}
