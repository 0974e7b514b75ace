package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultMaxTokens  = 4096
	deepSeekBaseURL   = "https://api.deepseek.com"
	defaultOllamaHost = "http://localhost:11434"
)

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o",
	ProviderDeepSeek:  "deepseek-chat",
	ProviderGemini:    "gemini-2.0-flash",
	ProviderOllama:    "llama3.1",
}

// modelProvider adapts any langchaingo model to Provider
type modelProvider struct {
	name      string
	model     llms.Model
	maxTokens int
}

// GenerateText implements Provider
func (p *modelProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt,
		llms.WithMaxTokens(p.maxTokens),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", p.name, err)
	}
	return response, nil
}

// Name implements Provider
func (p *modelProvider) Name() string {
	return p.name
}

func modelOrDefault(cfg Config, provider string) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return defaultModels[provider]
}

func newAnthropicProvider(cfg Config, key string) (Provider, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(modelOrDefault(cfg, ProviderAnthropic)),
		anthropic.WithToken(key),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	model, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
	}
	return &modelProvider{name: ProviderAnthropic, model: model, maxTokens: cfg.MaxTokens}, nil
}

// newOpenAIProvider also serves OpenAI-compatible endpoints such as DeepSeek
func newOpenAIProvider(name string, cfg Config, key string) (Provider, error) {
	opts := []openai.Option{
		openai.WithModel(modelOrDefault(cfg, name)),
		openai.WithToken(key),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}
	return &modelProvider{name: name, model: model, maxTokens: cfg.MaxTokens}, nil
}

func newGeminiProvider(ctx context.Context, cfg Config, key string) (Provider, error) {
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(key),
		googleai.WithDefaultModel(modelOrDefault(cfg, ProviderGemini)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &modelProvider{name: ProviderGemini, model: model, maxTokens: cfg.MaxTokens}, nil
}

func newOllamaProvider(cfg Config) (Provider, error) {
	host := cfg.BaseURL
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaHost
	}
	model, err := ollama.New(
		ollama.WithModel(modelOrDefault(cfg, ProviderOllama)),
		ollama.WithServerURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &modelProvider{name: ProviderOllama, model: model, maxTokens: cfg.MaxTokens}, nil
}
