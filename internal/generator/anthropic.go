package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/mcat-prep/backend/internal/config"
)

// AnthropicClient calls the Anthropic Messages API. SDK retries are off;
// a failed call surfaces immediately.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(cfg config.ProviderConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{client: &client, model: cfg.Model}, nil
}

func (c *AnthropicClient) ModelID() string { return c.model }

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: param.NewOpt(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, newGenerationError(CauseUnknown, errors.New("no text content in API response"))
	}

	return &LLMResponse{
		Content:      responseText,
		Model:        string(message.Model),
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Error(), err)
	}
	return err
}
