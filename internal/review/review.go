// Package review produces the natural-language project review. The worker
// stores it on the run and reuses it as shared context for every generation
// prompt that follows.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reforge-labs/reforge/internal/rework"
)

// BuildPrompt assembles the single review request over the selected files.
// The response is requested as a JSON envelope because some backends force
// JSON output mode.
func BuildPrompt(files []rework.SourceFile) string {
	var b strings.Builder

	b.WriteString("You are a senior engineer reviewing a codebase. Write a concise markdown ")
	b.WriteString("review of the files below: overall architecture, code quality, notable ")
	b.WriteString("problems, and the concrete directions a rewrite should follow.\n\n")
	b.WriteString("Respond with a single JSON object of the form ")
	b.WriteString(`{"review": "<markdown review>"}`)
	b.WriteString(". Do not add commentary outside the JSON.\n")
	b.WriteString(rework.FileBlocks(files))

	return b.String()
}

// ParseResponse extracts the review text from a raw model response,
// tolerating a markdown code fence around the JSON.
func ParseResponse(raw string) (string, error) {
	text := rework.StripFences(strings.TrimSpace(raw))

	var payload struct {
		Review string `json:"review"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", fmt.Errorf("review response is not valid JSON: %w", err)
	}
	if strings.TrimSpace(payload.Review) == "" {
		return "", fmt.Errorf(`review response has no "review" text`)
	}
	return payload.Review, nil
}

// Generate runs the review call against the generation backend.
func Generate(ctx context.Context, gen rework.Generator, files []rework.SourceFile) (string, error) {
	raw, err := gen.Generate(ctx, BuildPrompt(files))
	if err != nil {
		return "", fmt.Errorf("review generation: %w", err)
	}
	return ParseResponse(raw)
}
