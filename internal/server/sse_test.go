package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStream_TerminalStateEndsStream(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	doRequest(t, srv, http.MethodPost, "/submit", validSubmitBody(t))

	id := uuid.MustParse(testSubmissionID)
	store.submissions[id].Status = "completed"

	rec := doRequest(t, srv, http.MethodGet, "/result/"+testSubmissionID+"/stream", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: status")
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, `"status":"completed"`)
}

func TestResultStream_ClientDisconnectEndsStream(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	doRequest(t, srv, http.MethodPost, "/submit", validSubmitBody(t))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/result/"+testSubmissionID+"/stream?interval=10s", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.httpServer.Handler.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after context cancellation")
	}

	// The non-terminal snapshot was sent before the disconnect.
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "event: status"))
	assert.NotContains(t, rec.Body.String(), "event: complete")
}

func TestResultStream_UnknownSubmission(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rec := doRequest(t, srv, http.MethodGet, "/result/"+uuid.NewString()+"/stream", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultStream_IntervalFloor(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	doRequest(t, srv, http.MethodPost, "/submit", validSubmitBody(t))
	id := uuid.MustParse(testSubmissionID)
	store.submissions[id].Status = "error"

	// Absurdly small intervals fall back to the default rather than spinning.
	rec := doRequest(t, srv, http.MethodGet, "/result/"+testSubmissionID+"/stream?interval=1ns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: complete")
}
