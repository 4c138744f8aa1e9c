package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maharani/glowbrief/internal/config"
	"github.com/maharani/glowbrief/internal/types"
)

func testPayload() *types.SubmissionPayload {
	return &types.SubmissionPayload{
		SubmissionID:      "7f3e4d5c-1234-4abc-9def-1234567890ab",
		SubmittedAt:       "2026-08-01T09:30:00Z",
		TargetEnvironment: "production",
		Brand:             types.Brand{Name: "Lumina Botanica"},
	}
}

// testDispatcher builds a dispatcher pointed at url with near-zero backoff so
// retry tests run fast.
func testDispatcher(url string) *Dispatcher {
	d := New(&config.Config{
		ProductionWebhookURL: url,
		TestWebhookURL:       url + "/test",
		WebhookSecret:        "shh",
		DispatchTimeout:      5 * time.Second,
	})
	d.baseDelay = time.Millisecond
	return d
}

func TestDispatch_Success(t *testing.T) {
	var gotSecret atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret.Store(r.Header.Get("X-Webhook-Secret"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "7f3e4d5c-1234-4abc-9def-1234567890ab", body["submissionId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Workflow was started","workflowId":"wf-42"}`))
	}))
	defer ts.Close()

	result, err := testDispatcher(ts.URL).Dispatch(context.Background(), testPayload(), "production")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Workflow was started", result.Message)
	assert.Equal(t, "wf-42", result.WorkflowID)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "shh", gotSecret.Load())
}

func TestDispatch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer ts.Close()

	result, err := testDispatcher(ts.URL).Dispatch(context.Background(), testPayload(), "production")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDispatch_ExhaustedRetriesIsNotAnError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	result, err := testDispatcher(ts.URL).Dispatch(context.Background(), testPayload(), "production")
	require.NoError(t, err, "an exhausted dispatch is reported in the result, not as an error")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "500")
	assert.Equal(t, MaxRetries+1, result.Attempts)
	assert.EqualValues(t, MaxRetries+1, calls.Load())
}

func TestDispatch_NonJSONResponseFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Bad gateway</body></html>"))
	}))
	defer ts.Close()

	result, err := testDispatcher(ts.URL).Dispatch(context.Background(), testPayload(), "production")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "non-JSON")
}

func TestDispatch_DiagnosticIsTruncated(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write(long)
	}))
	defer ts.Close()

	result, err := testDispatcher(ts.URL).Dispatch(context.Background(), testPayload(), "production")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.LessOrEqual(t, len(result.Error), maxDiagnosticLen+len("webhook returned 502: "))
}

func TestDispatch_UnconfiguredEnvironment(t *testing.T) {
	d := New(&config.Config{DispatchTimeout: time.Second})

	_, err := d.Dispatch(context.Background(), testPayload(), "production")
	require.Error(t, err)

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "production", configErr.Environment)
}

func TestDispatch_TestEnvironmentUsesTestURL(t *testing.T) {
	d := testDispatcher("http://example.com/hook")
	assert.Equal(t, "http://example.com/hook/test", d.TargetURL("test"))
	assert.Equal(t, "http://example.com/hook", d.TargetURL("production"))
}

func TestDispatch_ContextCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	d := testDispatcher(ts.URL)
	d.baseDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result, err := d.Dispatch(ctx, testPayload(), "production")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "context canceled")
}
