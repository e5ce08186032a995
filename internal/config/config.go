package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderLocal      = "local"
	ProviderMock       = "mock"
)

const (
	DefaultPort              = "8080"
	DefaultGenerationTimeout = 120 * time.Second
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterReferer = "http://localhost:8000"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:3001",
}

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Database       DatabaseConfig
	LLM            LLMConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns DATABASE_URL when set, otherwise a lib/pq keyword string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type LLMConfig struct {
	Provider     string
	OpenRouter   ProviderConfig
	OpenAI       ProviderConfig
	Anthropic    ProviderConfig
	Gemini       ProviderConfig
	Referer      string
	LocalCommand string
	Timeout      time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", DefaultPort),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", ""), defaultAllowedOrigins),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "mcat_prep"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
			OpenRouter: ProviderConfig{
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
				BaseURL: getEnv("OPENROUTER_BASE_URL", DefaultOpenRouterBaseURL),
			},
			OpenAI: ProviderConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
			Anthropic: ProviderConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
				BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			},
			Gemini: ProviderConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			},
			Referer:      getEnv("OPENROUTER_REFERER", DefaultOpenRouterReferer),
			LocalCommand: getEnv("LOCAL_LLM_COMMAND", "ollama run qwen2.5:0.5b"),
			Timeout:      getDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),
		},
	}
}

// Validate checks that the selected provider can be constructed.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter:
		return requireKey("OPENROUTER_API_KEY", c.OpenRouter.APIKey)
	case ProviderOpenAI:
		return requireKey("OPENAI_API_KEY", c.OpenAI.APIKey)
	case ProviderAnthropic:
		return requireKey("ANTHROPIC_API_KEY", c.Anthropic.APIKey)
	case ProviderGemini:
		return requireKey("GEMINI_API_KEY", c.Gemini.APIKey)
	case ProviderLocal:
		if strings.TrimSpace(c.LocalCommand) == "" {
			return fmt.Errorf("LOCAL_LLM_COMMAND is required for provider %q", ProviderLocal)
		}
		return nil
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
}

func requireKey(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s environment variable not set", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if d, err := time.ParseDuration(val + "s"); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(val string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
