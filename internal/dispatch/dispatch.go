// Package dispatch forwards validated submission payloads to the external
// workflow engine's webhook endpoints.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/maharani/glowbrief/internal/config"
	"github.com/maharani/glowbrief/internal/types"
)

// MaxRetries is the number of additional attempts after the initial dispatch.
const MaxRetries = 2

// maxDiagnosticLen bounds the response body fragment carried in failure
// messages.
const maxDiagnosticLen = 200

// Result is the outcome of a dispatch, including exhausted-retry failures.
// A failed dispatch is not an error to the caller: the submission remains
// queued and the workflow engine may pick it up independently.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	WorkflowID string `json:"workflowId,omitempty"`
	Error      string `json:"error,omitempty"`

	// Attempts is the total number of HTTP attempts made.
	Attempts int `json:"-"`
}

// ConfigError indicates the target environment has no webhook URL
// configured. It fails fast and is never retried.
type ConfigError struct {
	Environment string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("webhook URL not configured for %s environment", e.Environment)
}

// Dispatcher posts payloads to the configured webhook endpoints with bounded
// exponential-backoff retry.
type Dispatcher struct {
	client    *http.Client
	cfg       *config.Config
	baseDelay time.Duration
}

// New creates a dispatcher from configuration.
func New(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		client:    &http.Client{Timeout: cfg.DispatchTimeout},
		cfg:       cfg,
		baseDelay: time.Second,
	}
}

// TargetURL resolves the webhook endpoint for an environment. Empty means
// unconfigured.
func (d *Dispatcher) TargetURL(environment string) string {
	return d.cfg.WebhookURL(environment)
}

// Dispatch posts the payload to the webhook for the given environment.
// Transport failures, non-2xx statuses and non-JSON responses are retried up
// to MaxRetries times, sleeping 2^attempt seconds between attempts. The
// retry loop blocks only the calling request. Exhausted retries produce a
// failure Result, not an error; the only error returned is *ConfigError.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *types.SubmissionPayload, environment string) (*Result, error) {
	webhookURL := d.cfg.WebhookURL(environment)
	if webhookURL == "" {
		return nil, &ConfigError{Environment: environment}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			// 2^(attempt-1) seconds after the failed attempt: 1s, then 2s.
			delay := time.Duration(1<<(attempt-1)) * d.baseDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &Result{Success: false, Error: ctx.Err().Error(), Attempts: attempt}, nil
			}
		}

		result, err := d.post(ctx, webhookURL, body)
		if err == nil {
			result.Attempts = attempt + 1
			return result, nil
		}
		lastErr = err
		log.Printf("[dispatch] webhook attempt %d/%d failed: %v", attempt+1, MaxRetries+1, err)
	}

	return &Result{Success: false, Error: lastErr.Error(), Attempts: MaxRetries + 1}, nil
}

// post performs a single webhook POST.
func (d *Dispatcher) post(ctx context.Context, webhookURL string, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.WebhookSecret != "" {
		req.Header.Set("X-Webhook-Secret", d.cfg.WebhookSecret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, truncate(respBody))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, fmt.Errorf("webhook returned non-JSON response (likely HTML error page): %s", truncate(respBody))
	}

	var data struct {
		Message    string `json:"message"`
		WorkflowID string `json:"workflowId"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("webhook returned malformed JSON: %s", truncate(respBody))
	}

	message := data.Message
	if message == "" {
		message = "Webhook dispatched successfully"
	}
	return &Result{Success: true, Message: message, WorkflowID: data.WorkflowID}, nil
}

func truncate(body []byte) string {
	s := string(body)
	if len(s) > maxDiagnosticLen {
		return s[:maxDiagnosticLen]
	}
	return s
}
