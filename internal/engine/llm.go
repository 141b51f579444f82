package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Completer is the hosted-LLM surface used by the agent and the summarizer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// LLMFactory builds a Completer for a user-supplied API key.
type LLMFactory func(apiKey string) (Completer, error)

// NewLLM builds an OpenAI-compatible client for apiKey using the configured
// base URL, model, temperature and token limit. Fallback keys are only
// attached when apiKey is the operator-configured key.
func NewLLM(apiKey string) (Completer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	var fallbacks []string
	if apiKey == cfg.LLMAPIKey {
		fallbacks = cfg.LLMAPIKeyFallbacks
	}
	client := llm.NewClient(cfg.LLMAPIBase, apiKey, cfg.LLMModel,
		llm.WithFallbackKeys(fallbacks),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	}), nil
}

// LLMFor resolves a Completer for apiKey through the configured factory.
// An empty key never reaches the factory.
func LLMFor(apiKey string) (Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if cfg.LLMFactory != nil {
		return cfg.LLMFactory(apiKey)
	}
	return NewLLM(apiKey)
}

// CallLLM sends a prompt through c and counts the call.
func CallLLM(ctx context.Context, c Completer, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := c.Complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
