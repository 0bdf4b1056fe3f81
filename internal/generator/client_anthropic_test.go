package generator

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
)

func anthropicBody(text string) string {
	resp := map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestAnthropicClient(serverURL string) *AnthropicClient {
	cfg := DefaultAnthropicConfig("test-key")
	cfg.BaseURL = serverURL
	cfg.Timeout = 5 * time.Second
	return NewAnthropicClient(cfg)
}

func TestAnthropicClient_Generate(t *testing.T) {
	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(anthropicBody(`["Frasier", "Cheers"]`)))
	}))
	defer server.Close()

	client := newTestAnthropicClient(server.URL)
	items, err := client.Generate(context.Background(), Request{
		Topic: "sitcoms",
		Count: 2,
		Hint:  SamplingHint{Temperature: 0.9},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Frasier", "Cheers"}, items)

	assert.Equal(t, systemPrompt, captured.System)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "sitcoms")
	assert.Equal(t, 0.9, captured.Temperature)
}

func TestAnthropicClient_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(anthropicBody(`["Seinfeld"]`)))
	}))
	defer server.Close()

	client := newTestAnthropicClient(server.URL)
	items, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Seinfeld"}, items)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnthropicClient_BackoffHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestAnthropicClient(server.URL)
	_, err := client.Generate(ctx, Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnthropicClient_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestAnthropicClient(server.URL)
	_, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicClient_MissingAPIKey(t *testing.T) {
	client := NewAnthropicClient(AnthropicConfig{BaseURL: "http://unreachable.invalid"})
	_, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
