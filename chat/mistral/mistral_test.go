package mistral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/encourager/chat"
)

type capturedRequest struct {
	Auth string
	Body struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

func completionServer(t *testing.T, status int, content string, got *capturedRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if got != nil {
			got.Auth = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.Body))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "Unauthorized", "type": "invalid_request_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "mistral-small-latest",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 12, "total_tokens": 52},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() chat.Request {
	return chat.Request{
		Messages: []chat.Message{
			{Role: chat.RoleSystem, Content: "You are a compassionate and supportive friend."},
			{Role: chat.RoleUser, Content: "Generate a positive, encouraging message."},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}
}

func TestClient_Complete(t *testing.T) {
	var got capturedRequest
	srv := completionServer(t, http.StatusOK, "Today is a fresh start.", &got)
	c := New(Config{APIKey: "secret", Model: "mistral-small-latest", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})

	text, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Today is a fresh start.", text)
	assert.Equal(t, "Bearer secret", got.Auth)
	assert.Equal(t, "mistral-small-latest", got.Body.Model)
	assert.InDelta(t, 0.7, got.Body.Temperature, 0.0001)
	assert.Equal(t, 500, got.Body.MaxTokens)
	require.Len(t, got.Body.Messages, 2)
	assert.Equal(t, "system", got.Body.Messages[0].Role)
	assert.Equal(t, "user", got.Body.Messages[1].Role)
}

func TestClient_Complete_MissingAPIKey(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "unused", nil)
	c := New(Config{BaseURL: srv.URL, Model: "mistral-small-latest"})

	_, err := c.Complete(context.Background(), testRequest())

	assert.True(t, errors.Is(err, chat.ErrMissingAPIKey))
}

func TestClient_Complete_Unauthorized(t *testing.T) {
	srv := completionServer(t, http.StatusUnauthorized, "", nil)
	c := New(Config{APIKey: "wrong", BaseURL: srv.URL, Model: "mistral-small-latest"})

	_, err := c.Complete(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create chat completion")
}

func TestClient_Complete_EmptyCompletion(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "   ", nil)
	c := New(Config{APIKey: "secret", BaseURL: srv.URL, Model: "mistral-small-latest"})

	_, err := c.Complete(context.Background(), testRequest())

	assert.True(t, errors.Is(err, chat.ErrEmptyCompletion))
}

func TestClient_Complete_CanceledContext(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "late", nil)
	c := New(Config{APIKey: "secret", BaseURL: srv.URL, Model: "mistral-small-latest"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, testRequest())

	require.Error(t, err)
}
