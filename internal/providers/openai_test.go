package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Extract(t *testing.T) {
	t.Run("successful extraction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "chatcmpl-123",
				"object": "chat.completion",
				"model": "gpt-4o",
				"choices": [
					{
						"index": 0,
						"message": {"role": "assistant", "content": "{\"vendor\": \"ACME\"}"},
						"finish_reason": "stop"
					}
				],
				"usage": {"prompt_tokens": 900, "completion_tokens": 60, "total_tokens": 960}
			}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
			APIKey:  "sk-test",
			BaseURL: server.URL,
			Model:   "gpt-4o",
		})

		result, err := client.Extract(context.Background(), []byte("fake image"), Prompt{
			System: "You extract form data.",
			User:   "Return JSON matching the example.",
		})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Content != `{"vendor": "ACME"}` {
			t.Errorf("unexpected content: %q", result.Content)
		}
		if result.TotalTokens != 960 {
			t.Errorf("TotalTokens = %d, want 960", result.TotalTokens)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
		if client.model != "gpt-4o" {
			t.Errorf("model = %s, want gpt-4o", client.model)
		}
		if client.maxTokens != 4096 {
			t.Errorf("maxTokens = %d, want 4096", client.maxTokens)
		}
	})
}
