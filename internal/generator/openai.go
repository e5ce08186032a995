package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcat-prep/backend/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

const openRouterTitle = "MCAT Question Generator"

// OpenAIClient talks to any OpenAI-compatible chat completions API. OpenRouter
// is served by the same client with a different base URL and extra headers.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg config.ProviderConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaiCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oaiCfg), model: cfg.Model}, nil
}

// NewOpenRouterClient targets OpenRouter and sends its attribution headers.
func NewOpenRouterClient(cfg config.ProviderConfig, referer string) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	oaiCfg.BaseURL = cfg.BaseURL
	if oaiCfg.BaseURL == "" {
		oaiCfg.BaseURL = config.DefaultOpenRouterBaseURL
	}
	oaiCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": referer,
				"X-Title":      openRouterTitle,
			},
		},
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oaiCfg), model: cfg.Model}, nil
}

func (c *OpenAIClient) ModelID() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, newGenerationError(CauseUnknown, errors.New("no choices in completion response"))
	}

	return &LLMResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}
	return err
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
