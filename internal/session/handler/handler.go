package handler

import (
	"context"
	"net/http"
	"time"

	"voicebank-server/internal/apierrors"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/session/processor"
	"voicebank-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HistoryStore reads back a session's persisted transcript and transfer
// audit rows. May be nil when persistence is disabled.
type HistoryStore interface {
	GetTranscriptBySessionID(ctx context.Context, sessionID uuid.UUID) ([]store.TranscriptEntry, error)
	GetTransferAttemptsBySessionID(ctx context.Context, sessionID uuid.UUID) ([]store.TransferAttempt, error)
}

type Handler struct {
	processor processor.SessionProcessor
	history   HistoryStore
	logger    *observability.Logger
}

func New(p processor.SessionProcessor, history HistoryStore, logger *observability.Logger) Handler {
	return Handler{processor: p, history: history, logger: logger}
}

type tokenRequest struct {
	Identity string `json:"identity" binding:"required"`
	Language string `json:"language"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	Language  string    `json:"language"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleMintToken issues a session token for the requested identity and
// language. Unknown language codes fall back to English rather than failing.
func (h *Handler) HandleMintToken(c *gin.Context) {
	ctx := c.Request.Context()

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "INVALID_REQUEST", "identity is required")
		return
	}

	language := lang.Parse(req.Language)
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "identity", Value: req.Identity},
		observability.Field{Key: "language", Value: string(language)},
	)

	token, expiresAt, err := h.processor.MintToken(processor.SessionGrant{
		Identity: req.Identity,
		Language: language,
	})
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	h.logger.Info(ctx, "session token minted")
	c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		Language:  string(language),
		ExpiresAt: expiresAt,
	})
}

type transcriptEntryResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type transferAttemptResponse struct {
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
	Outcome     string `json:"outcome"`
	StatusCode  int32  `json:"status_code,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type historyResponse struct {
	SessionID        string                    `json:"session_id"`
	Transcript       []transcriptEntryResponse `json:"transcript"`
	TransferAttempts []transferAttemptResponse `json:"transfer_attempts"`
}

// HandleGetHistory returns a finished session's transcript and transfer
// audit trail.
func (h *Handler) HandleGetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	if h.history == nil {
		apierrors.ServiceUnavailable(c, "HISTORY_DISABLED", "Session history is not available", nil)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "INVALID_SESSION_ID", "session id must be a UUID")
		return
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID.String()},
	)

	entries, err := h.history.GetTranscriptBySessionID(ctx, sessionID)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}
	attempts, err := h.history.GetTransferAttemptsBySessionID(ctx, sessionID)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	resp := historyResponse{
		SessionID:        sessionID.String(),
		Transcript:       make([]transcriptEntryResponse, 0, len(entries)),
		TransferAttempts: make([]transferAttemptResponse, 0, len(attempts)),
	}
	for _, e := range entries {
		resp.Transcript = append(resp.Transcript, transcriptEntryResponse{
			Role:      e.Role,
			Content:   e.Content,
			CreatedAt: e.CreatedAt,
		})
	}
	for _, a := range attempts {
		resp.TransferAttempts = append(resp.TransferAttempts, transferAttemptResponse{
			Amount:      a.Amount,
			Destination: a.Destination,
			Outcome:     a.Outcome,
			StatusCode:  a.StatusCode.Int32,
			CreatedAt:   a.CreatedAt,
		})
	}

	h.logger.Info(ctx, "session history served")
	c.JSON(http.StatusOK, resp)
}
