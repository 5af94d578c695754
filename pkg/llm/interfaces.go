// Package llm wraps the OpenAI-compatible generative service consumed by
// yardsketch-engine: chat completion (optionally with an image reference)
// and standalone image generation.
package llm

import (
	"context"
)

// GenerativeClient defines the interface for generative service operations.
// Use this interface for dependency injection to enable mocking in tests.
type GenerativeClient interface {
	// ChatCompletion generates a chat completion from a text-only prompt.
	ChatCompletion(ctx context.Context, prompt, systemMessage string) (string, error)

	// VisionCompletion generates a chat completion from a prompt plus an
	// image reference, using the image-capable model.
	VisionCompletion(ctx context.Context, prompt, systemMessage, imageURL string) (string, error)

	// GenerateImages requests n standalone images from a text prompt and
	// returns their (transient) URLs.
	GenerateImages(ctx context.Context, prompt string, n int) ([]string, error)
}

// Ensure Client implements GenerativeClient at compile time.
var _ GenerativeClient = (*Client)(nil)
