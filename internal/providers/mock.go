package providers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

const MockProviderName = "mock"

// MockProvider is an ExtractionProvider for testing.
type MockProvider struct {
	// Configurable behavior
	Latency         time.Duration
	ShouldFail      bool
	Err             error
	ResponseContent string

	// State
	requestCount atomic.Int64
	lastPrompt   atomic.Value // Prompt
	lastImageLen atomic.Int64
}

// NewMockProvider creates a new mock provider with sensible defaults.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ResponseContent: `{"mock": true}`,
	}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return MockProviderName
}

// Extract returns the configured response or failure.
func (p *MockProvider) Extract(ctx context.Context, image []byte, prompt Prompt) (*ExtractResult, error) {
	start := time.Now()
	count := p.requestCount.Add(1)
	p.lastPrompt.Store(prompt)
	p.lastImageLen.Store(int64(len(image)))

	if p.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Latency):
		}
	}

	if p.ShouldFail {
		err := p.Err
		if err == nil {
			err = errors.New("mock extraction failure")
		}
		return &ExtractResult{
			Success:       false,
			Provider:      MockProviderName,
			RequestID:     fmt.Sprintf("mock-%d", count),
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	return &ExtractResult{
		Success:       true,
		Content:       p.ResponseContent,
		Provider:      MockProviderName,
		ModelUsed:     "mock-model",
		RequestID:     fmt.Sprintf("mock-%d", count),
		ExecutionTime: time.Since(start),
	}, nil
}

// RequestCount returns the number of Extract calls made.
func (p *MockProvider) RequestCount() int64 {
	return p.requestCount.Load()
}

// LastPrompt returns the prompt from the most recent Extract call.
func (p *MockProvider) LastPrompt() Prompt {
	prompt, _ := p.lastPrompt.Load().(Prompt)
	return prompt
}

// LastImageLen returns the image byte length from the most recent call.
func (p *MockProvider) LastImageLen() int64 {
	return p.lastImageLen.Load()
}

// Verify interface
var _ ExtractionProvider = (*MockProvider)(nil)
