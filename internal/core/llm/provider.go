package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Provider is the interface for LLM backends
type Provider interface {
	// GenerateText generates text from a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name (e.g., "bedrock", "anthropic", "openai")
	Name() string
}

// ErrUnknownProvider is returned for a provider name NewProvider does not know
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Provider names accepted in config
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
	ProviderDeepSeek   = "deepseek"
	ProviderBedrock    = "bedrock"
	ProviderClaudeCode = "claude-code"
)

// ProviderNames lists every supported provider
var ProviderNames = []string{
	ProviderClaudeCode,
	ProviderAnthropic,
	ProviderOpenAI,
	ProviderGemini,
	ProviderOllama,
	ProviderDeepSeek,
	ProviderBedrock,
}

// Config selects and configures a provider
type Config struct {
	Provider  string
	Model     string
	APIKeyEnv string // name of the environment variable holding the key
	BaseURL   string
	Region    string // bedrock
	Profile   string // bedrock
	MaxTokens int
}

// default key variables when api_key_env is empty
var defaultKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderDeepSeek:  "DEEPSEEK_API_KEY",
}

// NewProvider builds the provider named in cfg
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderClaudeCode, "":
		return NewClaudeCodeProvider(ClaudeCodeConfig{Model: cfg.Model}), nil
	case ProviderAnthropic:
		key, err := apiKey(cfg)
		if err != nil {
			return nil, err
		}
		return newAnthropicProvider(cfg, key)
	case ProviderOpenAI:
		key, err := apiKey(cfg)
		if err != nil {
			return nil, err
		}
		return newOpenAIProvider(ProviderOpenAI, cfg, key)
	case ProviderDeepSeek:
		key, err := apiKey(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = deepSeekBaseURL
		}
		return newOpenAIProvider(ProviderDeepSeek, cfg, key)
	case ProviderGemini:
		key, err := apiKey(cfg)
		if err != nil {
			return nil, err
		}
		return newGeminiProvider(ctx, cfg, key)
	case ProviderOllama:
		return newOllamaProvider(cfg)
	case ProviderBedrock:
		return NewBedrockProvider(ctx, BedrockConfig{
			Region:    cfg.Region,
			ModelID:   cfg.Model,
			Profile:   cfg.Profile,
			MaxTokens: cfg.MaxTokens,
		})
	}
	return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownProvider, cfg.Provider, strings.Join(ProviderNames, ", "))
}

func apiKey(cfg Config) (string, error) {
	env := cfg.APIKeyEnv
	if env == "" {
		env = defaultKeyEnv[strings.ToLower(cfg.Provider)]
	}
	key := os.Getenv(env)
	if key == "" {
		return "", fmt.Errorf("%s provider needs an API key in $%s", cfg.Provider, env)
	}
	return key, nil
}
