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

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestOpenAIClient(serverURL string) *OpenAIClient {
	cfg := DefaultOpenAIConfig("test-key")
	cfg.BaseURL = serverURL
	cfg.Timeout = 5 * time.Second
	return NewOpenAIClient(cfg)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionBody(`["Frasier", "Cheers"]`)))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	seed := int64(42)
	items, err := client.Generate(context.Background(), Request{
		Topic: "sitcoms",
		Count: 2,
		Hint:  SamplingHint{Seed: &seed, Variant: 2, Temperature: 0.9},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Frasier", "Cheers"}, items)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, "sitcoms")
	assert.Equal(t, 0.9, captured.Temperature)

	// Variant offsets the wire seed so retries sample a fresh stream.
	require.NotNil(t, captured.Seed)
	assert.Equal(t, int64(42+2*1009), *captured.Seed)
}

func TestOpenAIClient_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody(`["Seinfeld"]`)))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	items, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Seinfeld"}, items)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIClient_BackoffHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestOpenAIClient(server.URL)
	_, err := client.Generate(ctx, Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenAIClient_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	_, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_APIErrorInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	_, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAIClient_MissingAPIKey(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{BaseURL: "http://unreachable.invalid"})
	_, err := client.Generate(context.Background(), Request{Topic: "sitcoms", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
