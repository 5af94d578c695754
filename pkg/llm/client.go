package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client provides access to an OpenAI-compatible generative endpoint.
type Client struct {
	client      *openai.Client
	endpoint    string
	textModel   string
	visionModel string
	imageModel  string
	logger      *zap.Logger
}

// Config holds configuration for creating a generative client.
type Config struct {
	Endpoint    string // Base URL, e.g. "https://api.openai.com/v1"
	APIKey      string
	TextModel   string // e.g. "gpt-4"
	VisionModel string // e.g. "gpt-4o"
	ImageModel  string // e.g. "dall-e-3"
}

// NewClient creates a new OpenAI-compatible generative client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.TextModel == "" {
		return nil, fmt.Errorf("text model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.TextModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		endpoint:    cfg.Endpoint,
		textModel:   cfg.TextModel,
		visionModel: visionModel,
		imageModel:  imageModel,
		logger:      logger.Named("llm"),
	}, nil
}

// ChatCompletion generates a chat completion from a text-only prompt.
func (c *Client) ChatCompletion(ctx context.Context, prompt, systemMessage string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	return c.complete(ctx, c.textModel, messages)
}

// VisionCompletion generates a chat completion from a prompt plus an image
// reference, using the image-capable model.
func (c *Client) VisionCompletion(ctx context.Context, prompt, systemMessage, imageURL string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    imageURL,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	}
	return c.complete(ctx, c.visionModel, messages)
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	c.logger.Debug("chat completion request",
		zap.String("model", model),
		zap.Int("messages", len(messages)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: 1500,
	})
	if err != nil {
		c.logger.Error("chat completion failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	c.logger.Info("chat completion succeeded",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// GenerateImages requests n standalone images from a text prompt and returns
// their transient URLs.
func (c *Client) GenerateImages(ctx context.Context, prompt string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}

	start := time.Now()

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:   c.imageModel,
		Prompt:  prompt,
		N:       n,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
	})
	if err != nil {
		c.logger.Error("image generation failed",
			zap.String("model", c.imageModel),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}

	urls := make([]string, 0, len(resp.Data))
	for _, img := range resp.Data {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}

	c.logger.Info("image generation succeeded",
		zap.String("model", c.imageModel),
		zap.Int("images", len(urls)),
		zap.Duration("elapsed", time.Since(start)))

	return urls, nil
}
