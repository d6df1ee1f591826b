package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicebank-server/internal/observability"
	"voicebank-server/internal/session/processor"
	"voicebank-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeHistoryStore struct {
	entries  []store.TranscriptEntry
	attempts []store.TransferAttempt
	err      error
}

func (f *fakeHistoryStore) GetTranscriptBySessionID(_ context.Context, _ uuid.UUID) ([]store.TranscriptEntry, error) {
	return f.entries, f.err
}

func (f *fakeHistoryStore) GetTransferAttemptsBySessionID(_ context.Context, _ uuid.UUID) ([]store.TransferAttempt, error) {
	return f.attempts, f.err
}

func newHistoryRouter(history HistoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := observability.NewLogger()
	h := New(processor.New("test-secret", logger), history, logger)
	router := gin.New()
	router.GET("/api/session/:id/history", h.HandleGetHistory)
	return router
}

func TestHandleGetHistory_ReturnsTranscriptAndAttempts(t *testing.T) {
	sessionID := uuid.New()
	history := &fakeHistoryStore{
		entries: []store.TranscriptEntry{
			{SessionID: sessionID, Role: store.TranscriptRoleUser, Content: "send 50 to John"},
			{SessionID: sessionID, Role: store.TranscriptRoleAssistant, Content: "50 to John Doe. Confirm?"},
		},
		attempts: []store.TransferAttempt{
			{SessionID: sessionID, Amount: "50", Destination: "John Doe", Outcome: "success"},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/session/%s/history", sessionID), nil)
	newHistoryRouter(history).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID  string `json:"session_id"`
		Transcript []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"transcript"`
		TransferAttempts []struct {
			Amount  string `json:"amount"`
			Outcome string `json:"outcome"`
		} `json:"transfer_attempts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.SessionID != sessionID.String() {
		t.Errorf("expected session id %s, got %s", sessionID, resp.SessionID)
	}
	if len(resp.Transcript) != 2 || resp.Transcript[0].Role != "user" {
		t.Errorf("unexpected transcript: %+v", resp.Transcript)
	}
	if len(resp.TransferAttempts) != 1 || resp.TransferAttempts[0].Outcome != "success" {
		t.Errorf("unexpected transfer attempts: %+v", resp.TransferAttempts)
	}
}

func TestHandleGetHistory_RejectsMalformedSessionID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/session/not-a-uuid/history", nil)
	newHistoryRouter(&fakeHistoryStore{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGetHistory_StoreErrorIsInternal(t *testing.T) {
	history := &fakeHistoryStore{err: fmt.Errorf("connection refused")}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/session/%s/history", uuid.New()), nil)
	newHistoryRouter(history).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleGetHistory_UnavailableWithoutStore(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/session/%s/history", uuid.New()), nil)
	newHistoryRouter(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
