package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedResponse is returned when the endpoint answers with a 2xx
// status but the body lacks the expected choices/message/content path.
var ErrMalformedResponse = errors.New("malformed extraction response")

// StatusError is returned for non-success HTTP responses from an
// extraction endpoint. It carries the status and raw body so the caller
// can surface them without retrying.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Prompt carries the rendered instructions for one extraction request.
type Prompt struct {
	// System is the fixed extraction instruction.
	System string `json:"system"`

	// User is the user-message text block, including the example schema.
	User string `json:"user"`
}

// ExtractResult is the outcome of a single extraction request.
type ExtractResult struct {
	// Response content
	Success bool   `json:"success"`
	Content string `json:"content"` // choices[0].message.content, verbatim

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Error info
	ErrorMessage string `json:"error_message,omitempty"`
}

// ExtractionProvider submits a composite image plus prompt to a hosted
// multimodal model and returns the extracted text. One request, one
// response; retries and rate limiting are out of scope.
type ExtractionProvider interface {
	// Name returns the provider identifier (e.g., "azure", "openai").
	Name() string

	// Extract sends the image and prompt and returns the first choice's
	// message content.
	Extract(ctx context.Context, image []byte, prompt Prompt) (*ExtractResult, error)
}
