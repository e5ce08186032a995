package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcat-prep/backend/internal/config"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.ProviderConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) ModelID() string { return c.model }

func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error) {
	temp := float32(req.Temperature)
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     &temp,
	})
	if err != nil {
		return nil, mapGeminiError(err)
	}

	resp := &LLMResponse{Content: result.Text(), Model: c.model}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message, err)
	}
	return err
}
