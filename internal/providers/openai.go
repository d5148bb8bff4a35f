package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const OpenAIProviderName = "openai"

// OpenAIConfig holds configuration for the OpenAI-compatible extraction
// client. BaseURL may point at api.openai.com or any compatible gateway.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // optional, defaults to the OpenAI API
	Model     string // e.g., "gpt-4o"
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIClient implements ExtractionProvider using the official OpenAI SDK
// for endpoints that speak the standard bearer-token protocol.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a new OpenAI-compatible extraction client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIProviderName
}

// Extract sends the composite image with the prompt and returns the first
// choice's message content.
func (c *OpenAIClient) Extract(ctx context.Context, image []byte, prompt Prompt) (*ExtractResult, error) {
	start := time.Now()
	requestID := uuid.New().String()

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt.User),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURI,
				}),
			}),
		},
		Temperature: openai.Float(0),
		TopP:        openai.Float(0),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		wrapped := fmt.Errorf("chat completion failed: %w", err)
		return &ExtractResult{
			Success:       false,
			Provider:      OpenAIProviderName,
			RequestID:     requestID,
			ErrorMessage:  wrapped.Error(),
			ExecutionTime: time.Since(start),
		}, wrapped
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices", ErrMalformedResponse)
		return &ExtractResult{
			Success:       false,
			Provider:      OpenAIProviderName,
			RequestID:     requestID,
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	return &ExtractResult{
		Success:          true,
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		Provider:         OpenAIProviderName,
		ModelUsed:        resp.Model,
		RequestID:        requestID,
		ExecutionTime:    time.Since(start),
	}, nil
}

// Verify interface
var _ ExtractionProvider = (*OpenAIClient)(nil)
