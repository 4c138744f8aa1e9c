package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submit", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"submissionId":"abc","mode":"production","status":"queued","message":"Submission queued successfully","webhookStatus":"dispatched"}`))
	}))
	defer ts.Close()

	resp, err := New(ts.URL).Submit(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.SubmissionID)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "dispatched", resp.WebhookStatus)
}

func TestStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/result/abc", r.URL.Path)
		require.Equal(t, "status", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"status":"running","lastUpdated":"2026-08-01T10:00:00Z","workflowStatus":"running"}}`))
	}))
	defer ts.Close()

	snapshot, err := New(ts.URL).Status(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "running", snapshot.Status)
	assert.Equal(t, "running", snapshot.WorkflowStatus)
}

func TestWaitForCompletion(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := "running"
		if calls.Add(1) >= 3 {
			status = "completed"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":{"status":%q,"lastUpdated":"2026-08-01T10:00:00Z"}}`, status)
	}))
	defer ts.Close()

	c := New(ts.URL, WithPollInterval(10*time.Millisecond))
	snapshot, err := c.WaitForCompletion(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "completed", snapshot.Status)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWaitForCompletion_TerminalError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"status":"error","lastUpdated":"2026-08-01T10:00:00Z"}}`))
	}))
	defer ts.Close()

	snapshot, err := New(ts.URL).WaitForCompletion(context.Background(), "abc")
	require.NoError(t, err, "a workflow error is a terminal snapshot, not a client error")
	assert.Equal(t, "error", snapshot.Status)
}

func TestWaitForCompletion_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"status":"running","lastUpdated":"2026-08-01T10:00:00Z"}}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(ts.URL, WithPollInterval(time.Hour))
	snapshot, err := c.WaitForCompletion(ctx, "abc")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, snapshot, "the last snapshot is returned alongside the error")
	assert.Equal(t, "running", snapshot.Status)
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Submission not found"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL).Status(context.Background(), "abc")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Submission not found", apiErr.Message)
}

func TestResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/result/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"submissionId":"abc","status":"completed","brandName":"Lumina Botanica","sections":{"pricing":{"unitCost":2.4}}}`))
	}))
	defer ts.Close()

	doc, err := New(ts.URL).Result(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "completed", doc.Status)
	assert.Equal(t, "Lumina Botanica", doc.BrandName)
	assert.Contains(t, doc.Sections, "pricing")
}
