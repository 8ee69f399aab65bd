package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/reforge-labs/reforge/internal/config"
)

const anthropicVersion = "bedrock-2023-05-31"

// BedrockClient wraps the AWS Bedrock runtime for text generation against
// Anthropic models.
type BedrockClient struct {
	bedrock *bedrockruntime.Client
	modelID string
}

// NewBedrockClient creates a new Bedrock generation client.
func NewBedrockClient(ctx context.Context, cfg config.BedrockConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)
	return &BedrockClient{bedrock: client, modelID: cfg.ModelID}, nil
}

// anthropicRequest is the Anthropic messages API request format on Bedrock.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the Anthropic messages API response format.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate invokes the model with the prompt as a single user message and
// returns the concatenated text blocks of the response.
func (c *BedrockClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        defaultMaxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		ContentType: strPtr("application/json"),
		Body:        reqBody,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}

	var result anthropicResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var b strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return strings.TrimSpace(b.String()), nil
}

// ModelID returns the Bedrock model identifier.
func (c *BedrockClient) ModelID() string { return c.modelID }

func strPtr(s string) *string { return &s }
