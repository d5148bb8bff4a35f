package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAzureClient_Extract(t *testing.T) {
	t.Run("successful extraction", func(t *testing.T) {
		var capturedBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verify request shape
			wantPath := "/openai/deployments/gpt-4o/chat/completions"
			if r.URL.Path != wantPath {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if v := r.URL.Query().Get("api-version"); v != "2024-02-15-preview" {
				t.Errorf("unexpected api-version: %s", v)
			}
			if key := r.Header.Get("api-key"); key != "test-key" {
				t.Errorf("unexpected api-key header: %s", key)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content-type: %s", ct)
			}

			if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}

			resp := azureChatResponse{
				ID:    "chatcmpl-123",
				Model: "gpt-4o",
				Choices: []azureChoice{
					{
						Index:        0,
						Message:      azureRespMsg{Role: "assistant", Content: `{"vendor": "ACME"}`},
						FinishReason: "stop",
					},
				},
				Usage: &azureUsage{PromptTokens: 1200, CompletionTokens: 80, TotalTokens: 1280},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewAzureClient(AzureConfig{
			Endpoint:   server.URL,
			APIKey:     "test-key",
			Deployment: "gpt-4o",
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
		if result.TotalTokens != 1280 {
			t.Errorf("TotalTokens = %d, want 1280", result.TotalTokens)
		}
		if result.RequestID == "" {
			t.Error("expected non-empty RequestID")
		}

		// Generation parameters are pinned and serialized even at zero.
		if temp, ok := capturedBody["temperature"].(float64); !ok || temp != 0 {
			t.Errorf("temperature = %v, want 0", capturedBody["temperature"])
		}
		if topP, ok := capturedBody["top_p"].(float64); !ok || topP != 0 {
			t.Errorf("top_p = %v, want 0", capturedBody["top_p"])
		}
		if maxTokens, _ := capturedBody["max_tokens"].(float64); maxTokens != 4096 {
			t.Errorf("max_tokens = %v, want 4096", capturedBody["max_tokens"])
		}

		messages, _ := capturedBody["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(messages))
		}
		system := messages[0].(map[string]any)
		if system["role"] != "system" {
			t.Errorf("first message role = %v, want system", system["role"])
		}
		user := messages[1].(map[string]any)
		if user["role"] != "user" {
			t.Errorf("second message role = %v, want user", user["role"])
		}
		parts, _ := user["content"].([]any)
		if len(parts) != 2 {
			t.Fatalf("expected 2 user content parts, got %d", len(parts))
		}
		imagePart := parts[1].(map[string]any)
		imageURL := imagePart["image_url"].(map[string]any)
		if url, _ := imageURL["url"].(string); !strings.HasPrefix(url, "data:image/jpeg;base64,") {
			t.Errorf("image url not a jpeg data URI: %.40s", url)
		}
	})

	t.Run("HTTP error returns StatusError without panic", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"code": "401", "message": "Access denied due to invalid subscription key"}}`))
		}))
		defer server.Close()

		client := NewAzureClient(AzureConfig{
			Endpoint:   server.URL,
			APIKey:     "bad-key",
			Deployment: "gpt-4o",
		})

		result, err := client.Extract(context.Background(), []byte("img"), Prompt{})
		if err == nil {
			t.Fatal("expected error for 401 response")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *StatusError, got %T: %v", err, err)
		}
		if statusErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
		}
		if !strings.Contains(statusErr.Body, "invalid subscription key") {
			t.Errorf("error body missing server message: %q", statusErr.Body)
		}
		if result.Success {
			t.Error("expected Success = false")
		}
		if result.ErrorMessage == "" {
			t.Error("expected failure indication in result")
		}
	})

	t.Run("empty choices is a named error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "chatcmpl-123", "model": "gpt-4o", "choices": []}`))
		}))
		defer server.Close()

		client := NewAzureClient(AzureConfig{
			Endpoint:   server.URL,
			APIKey:     "test-key",
			Deployment: "gpt-4o",
		})

		_, err := client.Extract(context.Background(), []byte("img"), Prompt{})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("non-JSON success body is a named error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway</html>"))
		}))
		defer server.Close()

		client := NewAzureClient(AzureConfig{
			Endpoint:   server.URL,
			APIKey:     "test-key",
			Deployment: "gpt-4o",
		})

		_, err := client.Extract(context.Background(), []byte("img"), Prompt{})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestAzureClient_Defaults(t *testing.T) {
	client := NewAzureClient(AzureConfig{
		Endpoint:   "https://example.openai.azure.com/",
		APIKey:     "k",
		Deployment: "gpt-4o",
	})

	if client.apiVersion != AzureDefaultAPIVersion {
		t.Errorf("apiVersion = %s, want %s", client.apiVersion, AzureDefaultAPIVersion)
	}
	if client.maxTokens != 4096 {
		t.Errorf("maxTokens = %d, want 4096", client.maxTokens)
	}
	if client.endpoint != "https://example.openai.azure.com" {
		t.Errorf("endpoint should have trailing slash trimmed, got %s", client.endpoint)
	}
}
