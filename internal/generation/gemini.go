package generation

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/reforge-labs/reforge/internal/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini generation client.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Generate sends the prompt and requests an application/json response, which
// keeps the model from wrapping its output in prose.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// ModelID returns the Gemini model identifier.
func (g *GeminiClient) ModelID() string { return "gemini:" + g.model }
