package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Session is one voice conversation, bounded by connect/disconnect.
type Session struct {
	ID        uuid.UUID      `db:"id"`
	Channel   string         `db:"channel"` // "app" or "phone"
	Language  string         `db:"language"`
	StartedAt string         `db:"started_at"`
	EndedAt   sql.NullString `db:"ended_at"`
}

// TranscriptEntry is one utterance or agent reply within a session.
type TranscriptEntry struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt string    `db:"created_at"`
}

const TranscriptRoleUser = "user"
const TranscriptRoleAssistant = "assistant"

const ChannelApp = "app"
const ChannelPhone = "phone"

const sqlCreateSession = `
INSERT INTO sessions (channel, language)
VALUES ($1, $2)
RETURNING id, channel, language, started_at, ended_at`

func (s *Store) CreateSession(ctx context.Context, channel string, language string) (Session, error) {
	var session Session
	err := s.db.GetContext(ctx, &session, sqlCreateSession, channel, language)
	if err != nil {
		s.logger.Error(ctx, "failed to create session", err)
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

const sqlEndSession = `
UPDATE sessions SET ended_at = now() WHERE id = $1`

func (s *Store) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, sqlEndSession, sessionID); err != nil {
		s.logger.Error(ctx, "failed to end session", err)
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

const sqlCreateTranscriptEntry = `
INSERT INTO transcript_entries (session_id, role, content)
VALUES ($1, $2, $3)
RETURNING id, session_id, role, content, created_at`

func (s *Store) CreateTranscriptEntry(ctx context.Context, sessionID uuid.UUID, role string, content string) (TranscriptEntry, error) {
	var entry TranscriptEntry
	err := s.db.GetContext(ctx, &entry, sqlCreateTranscriptEntry, sessionID, role, content)
	if err != nil {
		s.logger.Error(ctx, "failed to create transcript entry", err)
		return TranscriptEntry{}, fmt.Errorf("failed to create transcript entry: %w", err)
	}
	return entry, nil
}

const sqlGetTranscriptBySessionID = `
SELECT * FROM transcript_entries WHERE session_id = $1 ORDER BY created_at`

func (s *Store) GetTranscriptBySessionID(ctx context.Context, sessionID uuid.UUID) ([]TranscriptEntry, error) {
	var entries []TranscriptEntry
	err := s.db.SelectContext(ctx, &entries, sqlGetTranscriptBySessionID, sessionID)
	if err != nil {
		s.logger.Error(ctx, "failed to get transcript", err)
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return entries, nil
}
