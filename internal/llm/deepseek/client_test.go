package deepseek_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tiku/internal/config"
	"tiku/internal/llm"
	"tiku/internal/llm/deepseek"
	"tiku/internal/port"
)

func newTestClient(serverURL string) *deepseek.Client {
	cfg := &config.LLMConfig{
		APIKey:      "test-api-key",
		Model:       "deepseek-chat",
		TimeoutSecs: 30,
	}
	return deepseek.NewClientWithEndpoint(cfg, serverURL)
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "deepseek-chat", reqBody["model"])
		assert.Equal(t, float64(4000), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]string{"content": `{"questions": []}`},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	content, err := client.Complete(context.Background(), port.ChatRequest{
		Messages:    []port.ChatMessage{{Role: "user", Content: "拆分试卷"}},
		MaxTokens:   4000,
		Temperature: 0.7,
	})

	assert.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, content)
}

func TestClient_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), port.ChatRequest{
		Messages: []port.ChatMessage{{Role: "user", Content: "hi"}},
	})

	var rateErr *llm.RateLimitError
	assert.True(t, errors.As(err, &rateErr))
	assert.Equal(t, "deepseek", rateErr.Provider)
	assert.Equal(t, float64(17), rateErr.RetryAfter.Seconds())
}

func TestClient_Complete_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]string{"content": "partial"},
					"finish_reason": "length",
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), port.ChatRequest{
		Messages: []port.ChatMessage{{Role: "user", Content: "hi"}},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "finish_reason: length")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), port.ChatRequest{
		Messages: []port.ChatMessage{{Role: "user", Content: "hi"}},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), port.ChatRequest{
		Messages: []port.ChatMessage{{Role: "user", Content: "hi"}},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
