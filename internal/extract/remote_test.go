package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteOpenAI(t *testing.T) {
	srv := openAIServer(t, `{"productType":"badge case","color":"white","quantity":200,"urgent":true}`, http.StatusOK)
	r := NewRemote(NewOpenAI(OpenAIConfig{APIKey: "test-key", Endpoint: srv.URL + "/v1/", Model: "gpt-test"}))

	item, err := r.Extract(context.Background(), badgeQuery)
	require.NoError(t, err)
	assert.Equal(t, domain.ParsedQueryItem{
		ProductType: "badge case",
		Color:       domain.StringPtr("white"),
		Quantity:    domain.IntPtr(200),
		Urgent:      true,
	}, item)
	assert.Equal(t, "openai", r.Name())
}

func TestRemoteOpenAIServerError(t *testing.T) {
	srv := openAIServer(t, "", http.StatusServiceUnavailable)
	r := NewRemote(NewOpenAI(OpenAIConfig{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "gpt-test"}))

	_, err := r.Extract(context.Background(), badgeQuery)
	assert.Error(t, err)
}

func TestRemoteOpenAIMalformedAnswer(t *testing.T) {
	srv := openAIServer(t, "sorry, I can't help with that", http.StatusOK)
	r := NewRemote(NewOpenAI(OpenAIConfig{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "gpt-test"}))

	_, err := r.ExtractMulti(context.Background(), badgeQuery)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestRemoteAnthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, multiSystemPrompt, req["system"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_1",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-test",
			"content": []map[string]any{{
				"type": "text",
				"text": "<think>two items</think>{\"items\":[{\"productType\":\"t-shirts\",\"quantity\":1500},{\"productType\":\"hoodies\",\"quantity\":500}],\"globalUrgent\":false}",
			}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	r := NewRemote(NewAnthropic(AnthropicConfig{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "claude-test"}))

	batch, err := r.ExtractMulti(context.Background(), "1,500 pcs t-shirts, 500 pcs hoodies")
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "t-shirts", batch.Items[0].ProductType)
	assert.Equal(t, domain.IntPtr(500), batch.Items[1].Quantity)
	assert.Equal(t, "anthropic", r.Name())
}
