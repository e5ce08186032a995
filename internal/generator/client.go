package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcat-prep/backend/internal/config"
	"github.com/mcat-prep/backend/internal/logging"
	"github.com/mcat-prep/backend/internal/metrics"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// LLMClient is the interface every completion provider satisfies.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error)
	ModelID() string
}

// CompletionRequest is a single user-role prompt plus sampling settings.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	Model        string
	PromptTokens int
	OutputTokens int
}

// NewClient builds the LLMClient selected by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		c, err := NewOpenRouterClient(cfg.OpenRouter, cfg.Referer)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderAnthropic:
		c, err := NewAnthropicClient(cfg.Anthropic)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderLocal:
		c, err := NewCommandClient(cfg.LocalCommand)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// ── Generator ─────────────────────────────────────────────

// Options configure a Generator. Zero values fall back to defaults.
type Options struct {
	Provider string
	Timeout  time.Duration
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
}

// Generator runs one prompt → completion → parse → build pass per call.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	llm      LLMClient
	provider string
	timeout  time.Duration
	builder  *Builder
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewGenerator(llm LLMClient, opts Options) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultGenerationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Provider == "" {
		opts.Provider = "unknown"
	}
	return &Generator{
		llm:      llm,
		provider: opts.Provider,
		timeout:  opts.Timeout,
		builder:  NewBuilder(opts.Logger, opts.Metrics),
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

func (g *Generator) ModelName() string {
	return g.llm.ModelID()
}

// Generate asks the completion service for count questions about concept and
// normalizes the reply. Errors are *GenerationError, *MalformedResponseError
// or *InvalidQuestionError; nothing is retried.
func (g *Generator) Generate(ctx context.Context, concept string, count int) ([]models.Question, error) {
	log := logging.FromContext(ctx, g.log).WithFields(logrus.Fields{
		"concept":  concept,
		"count":    count,
		"provider": g.provider,
		"model":    g.llm.ModelID(),
	})
	log.Info("generating questions")

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.llm.Complete(callCtx, CompletionRequest{
		Prompt:      BuildPrompt(concept, count),
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	g.metrics.ObserveCompletion(g.provider, time.Since(start))
	if err != nil {
		genErr := classifyCompletionError(err)
		log.WithError(err).WithField("cause", genErr.Cause).Error("completion call failed")
		g.metrics.ObserveGeneration(string(genErr.Cause))
		return nil, genErr
	}

	log.WithFields(logrus.Fields{
		"prompt_tokens": resp.PromptTokens,
		"output_tokens": resp.OutputTokens,
	}).Info("received completion, parsing")

	records, err := ParseResponse(resp.Content)
	if err != nil {
		var mr *MalformedResponseError
		if errors.As(err, &mr) {
			log = log.WithField("excerpt", mr.Excerpt)
		}
		log.WithError(err).Error("failed to parse completion")
		g.metrics.ObserveGeneration("malformed_response")
		return nil, err
	}

	log.WithField("records", len(records)).Debug("parsed completion, building questions")

	questions, err := g.builder.withLogger(log).Build(records, count)
	if err != nil {
		g.metrics.ObserveGeneration("invalid_question")
		return nil, err
	}

	logQualityReport(log, InspectBatch(questions))

	log.WithField("generated", len(questions)).Info("generated questions")
	g.metrics.ObserveGeneration("success")
	return questions, nil
}
