// Package client is a small API client for the brief intake backend. It
// covers the two calls external tooling needs: submitting a brief and
// waiting for its workflow to finish.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maharani/glowbrief/internal/types"
)

// DefaultPollInterval matches the cadence the web frontend uses.
const DefaultPollInterval = 5 * time.Second

// Client talks to a running backend instance.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval overrides the status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitResponse is the backend's acknowledgment of a submitted brief.
type SubmitResponse struct {
	SubmissionID  string `json:"submissionId"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	WebhookStatus string `json:"webhookStatus,omitempty"`
	MockMode      bool   `json:"mockMode,omitempty"`
}

// Submit posts a raw submission payload.
func (c *Client) Submit(ctx context.Context, payload []byte) (*SubmitResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out SubmitResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the lightweight status view for a submission.
func (c *Client) Status(ctx context.Context, submissionID string) (*types.StatusSnapshot, error) {
	url := fmt.Sprintf("%s/result/%s?fields=status", c.baseURL, submissionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out struct {
		Status *types.StatusSnapshot `json:"status"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Status == nil {
		return nil, fmt.Errorf("status response missing status field")
	}
	return out.Status, nil
}

// Result fetches the full result document for a submission.
func (c *Client) Result(ctx context.Context, submissionID string) (*types.ResultDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/result/"+submissionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out types.ResultDocument
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForCompletion polls the status view until the submission reaches a
// terminal state or the context is cancelled. The terminal snapshot is
// returned even when the workflow ended in error; the caller inspects Status.
func (c *Client) WaitForCompletion(ctx context.Context, submissionID string) (*types.StatusSnapshot, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		snapshot, err := c.Status(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		if snapshot.Status == "completed" || snapshot.Status == "error" {
			return snapshot, nil
		}

		select {
		case <-ctx.Done():
			return snapshot, ctx.Err()
		case <-ticker.C:
		}
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
