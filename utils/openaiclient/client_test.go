package openaiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubgo/geminiquick/utils/openaiclient"
	"github.com/pubgo/geminiquick/utils/textgen"
)

func chatResponse(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gemini-2.5-flash",
		"choices": []any{
			map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
	}
}

func newServer(t *testing.T, calls *atomic.Int32, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/chat/completions", "/models":
		default:
			http.NotFound(w, r)
			return
		}

		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "invalid key", "type": "invalid_request_error"}})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var pingRequest = textgen.Request{Model: "gemini-2.5-flash", Prompt: "PING"}

func TestGenerate(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls, http.StatusOK, chatResponse("PONG", "stop"))

	c, err := openaiclient.New(&openaiclient.Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	resp, err := c.Generate(context.Background(), pingRequest)
	require.NoError(t, err)
	assert.Equal(t, "PONG", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateFailures(t *testing.T) {
	var cases = []struct {
		name   string
		key    string
		status int
		body   any
		want   error
	}{
		{"bad key", "wrong", http.StatusOK, chatResponse("PONG", "stop"), textgen.ErrAuth},
		{"quota", "test-key", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down"}}, textgen.ErrRateLimit},
		{"filtered", "test-key", http.StatusOK, chatResponse("", "content_filter"), textgen.ErrBlocked},
		{"empty", "test-key", http.StatusOK, chatResponse("", "stop"), textgen.ErrEmptyResponse},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newServer(t, &calls, c.status, c.body)

			client, err := openaiclient.New(&openaiclient.Config{APIKey: c.key, BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), pingRequest)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestListModels(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls, http.StatusOK, map[string]any{
		"object": "list",
		"data": []any{
			map[string]any{"id": "models/gemini-2.5-flash", "object": "model", "owned_by": "google"},
			map[string]any{"id": "models/gemini-2.5-pro", "object": "model", "owned_by": "google"},
		},
	})

	c, err := openaiclient.New(&openaiclient.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemini-2.5-flash", models[0].Name)
}

func TestNewWithoutKey(t *testing.T) {
	_, err := openaiclient.New(&openaiclient.Config{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, textgen.ErrMissingCredential)
}

func TestGenerateZeroTemperature(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("PONG", "stop"))
	}))
	t.Cleanup(srv.Close)

	c, err := openaiclient.New(&openaiclient.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	zero := float32(0)
	req := pingRequest
	req.Temperature = &zero
	_, err = c.Generate(context.Background(), req)
	require.NoError(t, err)

	body := <-bodies
	require.Contains(t, body, "temperature")
	assert.InDelta(t, 0, body["temperature"], 1e-6)
}
