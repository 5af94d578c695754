package llm

import (
	"context"
)

// MockGenerativeClient is a configurable mock for testing generative
// functionality. Set the function fields to control behavior in tests.
type MockGenerativeClient struct {
	// ChatCompletionFunc is called when ChatCompletion is invoked.
	// If nil, returns empty string and nil error.
	ChatCompletionFunc func(ctx context.Context, prompt, systemMessage string) (string, error)

	// VisionCompletionFunc is called when VisionCompletion is invoked.
	// If nil, returns empty string and nil error.
	VisionCompletionFunc func(ctx context.Context, prompt, systemMessage, imageURL string) (string, error)

	// GenerateImagesFunc is called when GenerateImages is invoked.
	// If nil, returns nil slice and nil error.
	GenerateImagesFunc func(ctx context.Context, prompt string, n int) ([]string, error)

	// Call tracking for verification
	ChatCompletionCalls   int
	VisionCompletionCalls int
	GenerateImagesCalls   int
}

// NewMockGenerativeClient creates a new mock with sensible defaults.
func NewMockGenerativeClient() *MockGenerativeClient {
	return &MockGenerativeClient{}
}

// ChatCompletion implements GenerativeClient.
func (m *MockGenerativeClient) ChatCompletion(ctx context.Context, prompt, systemMessage string) (string, error) {
	m.ChatCompletionCalls++
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, prompt, systemMessage)
	}
	return "", nil
}

// VisionCompletion implements GenerativeClient.
func (m *MockGenerativeClient) VisionCompletion(ctx context.Context, prompt, systemMessage, imageURL string) (string, error) {
	m.VisionCompletionCalls++
	if m.VisionCompletionFunc != nil {
		return m.VisionCompletionFunc(ctx, prompt, systemMessage, imageURL)
	}
	return "", nil
}

// GenerateImages implements GenerativeClient.
func (m *MockGenerativeClient) GenerateImages(ctx context.Context, prompt string, n int) ([]string, error) {
	m.GenerateImagesCalls++
	if m.GenerateImagesFunc != nil {
		return m.GenerateImagesFunc(ctx, prompt, n)
	}
	return nil, nil
}

// Reset clears call tracking counters.
func (m *MockGenerativeClient) Reset() {
	m.ChatCompletionCalls = 0
	m.VisionCompletionCalls = 0
	m.GenerateImagesCalls = 0
}

// Ensure MockGenerativeClient implements GenerativeClient at compile time.
var _ GenerativeClient = (*MockGenerativeClient)(nil)
