package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reforge-labs/reforge/internal/config"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel   = "anthropic/claude-sonnet-4"
	maxRetries               = 3
	retryDelay               = 2 * time.Second
	defaultMaxTokens         = 16384
	defaultTemperature       = 0.2
)

// OpenRouterClient is a lightweight OpenAI-compatible chat completions client.
type OpenRouterClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenRouterClient creates a chat client for OpenRouter or any
// OpenAI-compatible endpoint.
func NewOpenRouterClient(cfg config.OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenRouterModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	} else {
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			baseURL += "/chat/completions"
		}
	}
	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Generate sends the prompt as a single user message and returns the
// response content. Transient upstream statuses (429, 529, 503) are retried
// with linear backoff; anything else fails immediately.
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		result, err := c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		errStr := err.Error()
		if !strings.Contains(errStr, "status 429") &&
			!strings.Contains(errStr, "status 529") &&
			!strings.Contains(errStr, "status 503") {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *OpenRouterClient) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("generation error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// ModelID returns the model identifier.
func (c *OpenRouterClient) ModelID() string {
	return c.model
}
