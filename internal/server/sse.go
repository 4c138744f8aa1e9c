package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/maharani/glowbrief/internal/db"
	"github.com/maharani/glowbrief/internal/intake"
)

// defaultStreamInterval matches the polling cadence of the web client.
const defaultStreamInterval = 5 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// handleResultStream pushes status snapshots over SSE until the submission
// reaches a terminal state or the client disconnects. It serves the same
// contract as polling GET /result/{id}?fields=status without client timers.
func (s *Server) handleResultStream(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := s.parseSubmissionID(w, r)
	if !ok {
		return
	}

	if s.store == nil {
		s.errorResponse(w, HTTPStatus(intake.ErrStoreUnavailable), intake.ErrStoreUnavailable.Error())
		return
	}

	interval := defaultStreamInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed >= 100*time.Millisecond {
			interval = parsed
		}
	}

	submission, err := s.store.GetSubmission(r.Context(), submissionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if submission == nil {
		notFound := &ErrSubmissionNotFound{ID: submissionID}
		s.errorResponse(w, HTTPStatus(notFound), "Submission not found")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot, err := s.statusSnapshot(r, submission)
		if err != nil {
			sse.WriteError("Database error: " + err.Error())
			return
		}
		if err := sse.WriteEvent("status", snapshot); err != nil {
			log.Printf("[server] SSE write failed for %s: %v", submissionID, err)
			return
		}

		if submission.Status == db.StatusCompleted || submission.Status == db.StatusError {
			sse.WriteEvent("complete", snapshot) //nolint:errcheck
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		submission, err = s.store.GetSubmission(r.Context(), submissionID)
		if err != nil {
			sse.WriteError("Database error: " + err.Error())
			return
		}
		if submission == nil {
			sse.WriteError("Submission not found")
			return
		}
	}
}
