package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AzureProviderName      = "azure"
	AzureDefaultAPIVersion = "2024-02-15-preview"
)

// AzureConfig holds configuration for the Azure OpenAI extraction client.
type AzureConfig struct {
	Endpoint   string // e.g., "https://my-account.openai.azure.com/"
	APIKey     string
	Deployment string // vision model deployment name
	APIVersion string
	MaxTokens  int
	Timeout    time.Duration
}

// AzureClient implements ExtractionProvider against an Azure OpenAI
// chat-completions deployment. Requests carry the `api-key` header and the
// `api-version` query parameter rather than a bearer token.
type AzureClient struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	maxTokens  int
	client     *http.Client
}

// NewAzureClient creates a new Azure OpenAI extraction client.
func NewAzureClient(cfg AzureConfig) *AzureClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = AzureDefaultAPIVersion
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &AzureClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		apiVersion: cfg.APIVersion,
		maxTokens:  cfg.MaxTokens,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *AzureClient) Name() string {
	return AzureProviderName
}

// Extract sends the composite image with the prompt to the deployment and
// returns the first choice's message content.
func (c *AzureClient) Extract(ctx context.Context, image []byte, prompt Prompt) (*ExtractResult, error) {
	start := time.Now()
	requestID := uuid.New().String()

	imageBase64 := base64.StdEncoding.EncodeToString(image)

	// Generation parameters are deterministic: temperature and top_p are
	// pinned to zero, so they must be serialized even at their zero value.
	reqBody := azureChatRequest{
		Messages: []azureMessage{
			{
				Role:    "system",
				Content: prompt.System,
			},
			{
				Role: "user",
				Content: []azureContentPart{
					{Type: "text", Text: prompt.User},
					{
						Type: "image_url",
						ImageURL: &azureImageURL{
							URL: "data:image/jpeg;base64," + imageBase64,
						},
					},
				},
			},
		},
		Temperature: 0,
		TopP:        0,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.doRequest(ctx, reqBody)
	if err != nil {
		return &ExtractResult{
			Success:       false,
			Provider:      AzureProviderName,
			RequestID:     requestID,
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices", ErrMalformedResponse)
		return &ExtractResult{
			Success:       false,
			Provider:      AzureProviderName,
			RequestID:     requestID,
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	result := &ExtractResult{
		Success:       true,
		Content:       resp.Choices[0].Message.Content,
		Provider:      AzureProviderName,
		ModelUsed:     resp.Model,
		RequestID:     requestID,
		ExecutionTime: time.Since(start),
	}
	if resp.Usage != nil {
		result.PromptTokens = resp.Usage.PromptTokens
		result.CompletionTokens = resp.Usage.CompletionTokens
		result.TotalTokens = resp.Usage.TotalTokens
	}

	return result, nil
}

// doRequest makes a single HTTP request to the Azure OpenAI endpoint.
func (c *AzureClient) doRequest(ctx context.Context, body any) (*azureChatResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Try to extract a structured error message from the body.
		var errResp azureErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, &StatusError{
				Provider:   AzureProviderName,
				StatusCode: resp.StatusCode,
				Body:       errResp.Error.Message,
			}
		}
		return nil, &StatusError{
			Provider:   AzureProviderName,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var chatResp azureChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &chatResp, nil
}

// Azure OpenAI chat completions API types

type azureChatRequest struct {
	Messages    []azureMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
	TopP        float64        `json:"top_p"`
	MaxTokens   int            `json:"max_tokens"`
}

type azureMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, []azureContentPart for user
}

type azureContentPart struct {
	Type     string         `json:"type"` // "text" or "image_url"
	Text     string         `json:"text,omitempty"`
	ImageURL *azureImageURL `json:"image_url,omitempty"`
}

type azureImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type azureChatResponse struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []azureChoice `json:"choices"`
	Usage   *azureUsage   `json:"usage,omitempty"`
}

type azureChoice struct {
	Index        int          `json:"index"`
	Message      azureRespMsg `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type azureRespMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type azureUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type azureErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Verify interface
var _ ExtractionProvider = (*AzureClient)(nil)
