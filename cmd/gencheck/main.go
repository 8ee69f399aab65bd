// gencheck makes a single generation request using config from env (and .env if present).
// Run from project root: go run ./cmd/gencheck
// Verbose (raw HTTP, OpenRouter only): go run ./cmd/gencheck -verbose
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/generation"
)

func main() {
	verbose := flag.Bool("verbose", false, "print raw HTTP request and response (OpenRouter only)")
	prompt := flag.String("prompt", "Reply with the single word: ready.", "prompt to send")
	flag.Parse()

	_ = godotenv.Load(".env") // ignore error if .env missing

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *verbose {
		if cfg.OpenRouter.APIKey == "" {
			log.Fatal("verbose mode needs OPENROUTER_API_KEY (raw HTTP is OpenRouter only)")
		}
		doVerbose(cfg.OpenRouter, *prompt)
		return
	}

	ctx := context.Background()
	client, err := generation.New(ctx, cfg)
	if err != nil {
		log.Fatalf("generation client: %v", err)
	}
	if client == nil {
		log.Fatal("no generation backend configured (set OPENROUTER_API_KEY, BEDROCK_REGION, or GEMINI_API_KEY)")
	}

	fmt.Printf("Provider: %T\n", client)
	fmt.Printf("Model: %s\n", client.ModelID())
	fmt.Println("Sending one generation request...")

	result, err := client.Generate(ctx, *prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate error: %v\n", err)
		os.Exit(1)
	}

	preview := result
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	fmt.Printf("OK: got %d chars\n%s\n", len(result), preview)
}

func doVerbose(orc config.OpenRouterConfig, prompt string) {
	model := orc.Model
	if model == "" {
		model = "anthropic/claude-sonnet-4"
	}
	baseURL := orc.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1/chat/completions"
	} else {
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			baseURL += "/chat/completions"
		}
	}

	body := map[string]any{
		"model":      model,
		"messages":   []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens": 256,
	}
	raw, _ := json.MarshalIndent(body, "", "  ")
	fmt.Println("--- Request ---")
	fmt.Printf("POST %s\n", baseURL)
	fmt.Printf("Body:\n%s\n", raw)

	req, err := http.NewRequest(http.MethodPost, baseURL, bytes.NewReader(raw))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+orc.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("HTTP request: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Println("--- Response ---")
	fmt.Printf("Status: %d %s\n", resp.StatusCode, resp.Status)
	fmt.Printf("Body:\n%s\n", respBody)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
