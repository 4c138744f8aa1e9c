// Package analytics emits structured product-analytics events. Events are
// always logged locally; when a sink endpoint is configured they are also
// forwarded as fire-and-forget JSON POSTs.
package analytics

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Event is one analytics entry.
type Event struct {
	Timestamp string         `json:"timestamp"`
	Action    string         `json:"action"`
	Category  string         `json:"category"`
	Label     string         `json:"label,omitempty"`
	Value     int            `json:"value,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Logger forwards events to an optional external sink.
type Logger struct {
	endpoint string
	client   *http.Client
}

// New creates a logger. An empty endpoint disables forwarding; local logging
// still happens.
func New(endpoint string) *Logger {
	return &Logger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// LogEvent records an event. Sink failures are logged and never propagate to
// the request path.
func (l *Logger) LogEvent(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	entry, err := json.Marshal(event)
	if err != nil {
		log.Printf("[analytics] failed to encode event: %v", err)
		return
	}
	log.Printf("[analytics] %s", entry)

	if l == nil || l.endpoint == "" {
		return
	}

	go func() {
		resp, err := l.client.Post(l.endpoint, "application/json", bytes.NewReader(entry))
		if err != nil {
			log.Printf("[analytics] dispatch failed: %v", err)
			return
		}
		_ = resp.Body.Close()
	}()
}

// LogSubmission records a created submission.
func (l *Logger) LogSubmission(submissionID, environment string) {
	l.LogEvent(Event{
		Action:   "submission_created",
		Category: "workflow",
		Label:    environment,
		Metadata: map[string]any{"submissionId": submissionID},
	})
}

// LogWebhookCallback records a processed workflow callback.
func (l *Logger) LogWebhookCallback(submissionID, status string) {
	l.LogEvent(Event{
		Action:   "webhook_callback",
		Category: "workflow",
		Label:    status,
		Metadata: map[string]any{"submissionId": submissionID},
	})
}

// LogReportView records a full result read.
func (l *Logger) LogReportView(submissionID string) {
	l.LogEvent(Event{
		Action:   "report_viewed",
		Category: "engagement",
		Metadata: map[string]any{"submissionId": submissionID},
	})
}
