// Package banking is the HTTP client for the remote banking service.
// It performs single bounded calls with no internal retries; retry policy
// belongs to the caller.
package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"voicebank-server/internal/observability"
)

var (
	// ErrUnreachable wraps connection-level failures.
	ErrUnreachable = errors.New("banking service unreachable")
	// ErrBadResponse marks a 2xx response whose body could not be parsed.
	ErrBadResponse = errors.New("unparseable banking service response")
)

// ServiceError is a non-2xx response from the banking service.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("banking service returned %d: %s", e.StatusCode, e.Body)
}

// SessionAuth carries the opaque bearer credential for one session. It is
// attached to every outbound call and never persisted or logged in full.
type SessionAuth struct {
	AccessToken string
}

// RecipientCandidate is one match from the recipient search endpoint.
type RecipientCandidate struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TransferRequest is the wire payload for the transfer endpoint. Exactly one
// of RecipientID / ToAccountID must be set; the executor validates this
// before the request is built.
type TransferRequest struct {
	Amount        string `json:"amount"`
	RecipientID   string `json:"recipient_id,omitempty"`
	ToAccountID   string `json:"to_account_id,omitempty"`
	FromAccountID string `json:"from_account_id"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Reference     string `json:"reference"`
	ScheduledAt   string `json:"scheduled_at"`
}

// TransferResponse is the raw outcome of a transfer submission. The caller
// interprets status and body; only transport failures surface as errors.
type TransferResponse struct {
	StatusCode int
	Body       []byte
}

// Client calls the banking service's recipient-search and transfer endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a banking service client for the given base URL
func NewClient(baseURL string, logger *observability.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SearchRecipients looks up recipients by free-text name. A missing access
// token is not fatal locally; the request is still sent and the service
// decides whether auth is required.
func (c *Client) SearchRecipients(ctx context.Context, name string, auth SessionAuth) ([]RecipientCandidate, error) {
	endpoint := fmt.Sprintf("%s/v1/recipients/search-by-name?name=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient search request: %w", err)
	}
	c.setAuth(req, auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "failed to call recipient search", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var candidates []RecipientCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		c.logger.Error(ctx, "failed to parse recipient search response", err)
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return candidates, nil
}

// CreateTransfer submits one transfer. HTTP status interpretation is the
// caller's job; this method errors only when the service cannot be reached.
func (c *Client) CreateTransfer(ctx context.Context, request TransferRequest, auth SessionAuth) (TransferResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	endpoint := c.baseURL + "/v1/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return TransferResponse{}, fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req, auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "failed to call transfer endpoint", err)
		return TransferResponse{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return TransferResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) setAuth(req *http.Request, auth SessionAuth) {
	if auth.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	}
}
