// Package generation provides the model backends that turn rework prompts
// into raw responses. All backends implement the same one-shot contract:
// prompt text in, response text out.
package generation

import (
	"context"
	"fmt"

	"github.com/reforge-labs/reforge/internal/config"
)

// Client is the interface for generation providers.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelID() string
}

// New auto-selects a provider: OpenRouter (if API key set) > Bedrock (if
// region set) > Gemini (if API key set) > nil.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg.OpenRouter.APIKey != "" {
		client, err := NewOpenRouterClient(cfg.OpenRouter)
		if err != nil {
			return nil, fmt.Errorf("openrouter client: %w", err)
		}
		return client, nil
	}

	if cfg.Bedrock.Region != "" {
		client, err := NewBedrockClient(ctx, cfg.Bedrock)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		return client, nil
	}

	if cfg.Gemini.APIKey != "" {
		client, err := NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, nil
	}

	return nil, nil
}
