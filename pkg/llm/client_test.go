package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client against srv with a recording sleep.
func newTestClient(t *testing.T, srv *httptest.Server, sleeps *[]time.Duration) *Client {
	t.Helper()
	client, err := New(Options{
		BaseURL:     srv.URL,
		Token:       "test-token",
		Model:       "test-model",
		MaxTokens:   64,
		Temperature: 0.2,
		MaxAttempts: 3,
		BackoffUnit: time.Millisecond,
		HTTPClient:  srv.Client(),
		Sleep: func(ctx context.Context, d time.Duration) {
			*sleeps = append(*sleeps, d)
		},
	})
	require.NoError(t, err)
	return client
}

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestNew_RequiresTokenAndModel(t *testing.T) {
	_, err := New(Options{Model: "m"})
	require.ErrorIs(t, err, ErrMissingCredential)

	_, err = New(Options{Token: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")
}

func TestClient_Complete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, completionBody(`{"summary": "ok", "estimated_minutes": 10}`))
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	text, err := client.Complete(context.Background(), Request{System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok", "estimated_minutes": 10}`, text)
	assert.Empty(t, sleeps)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 64, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "sys", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "usr", gotReq.Messages[1].Content)
}

func TestClient_Complete_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "rate limited")
			return
		}
		fmt.Fprint(w, completionBody("recovered"))
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	text, err := client.Complete(context.Background(), Request{User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(3), calls.Load())
	// Exponential backoff starting at one unit, doubling each retry.
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, sleeps)
}

func TestClient_Complete_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "server on fire")
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	_, err := client.Complete(context.Background(), Request{User: "usr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion failed after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
	// The policy sleeps after every failed attempt, the last one included.
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, sleeps)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusInternalServerError, serviceErr.StatusCode)
}

func TestClient_Complete_UnrecognizedErrorsStillRetry(t *testing.T) {
	// A malformed-request style failure (400) keeps the conservative
	// transient default and pays the full retry budget.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad request")
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	_, err := client.Complete(context.Background(), Request{User: "usr"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Complete_CancelledContextIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, completionBody("never seen"))
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, Request{User: "usr"})
	require.Error(t, err)
	assert.Empty(t, sleeps, "fatal errors must not be retried")
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := newTestClient(t, srv, &sleeps)

	_, err := client.Complete(context.Background(), Request{User: "usr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
