package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reforge-labs/reforge/internal/config"
)

func TestNewOpenRouterClient_MissingAPIKey(t *testing.T) {
	_, err := NewOpenRouterClient(config.OpenRouterConfig{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewOpenRouterClient_Defaults(t *testing.T) {
	client, err := NewOpenRouterClient(config.OpenRouterConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	if client.model != defaultOpenRouterModel {
		t.Errorf("expected default model %s, got %s", defaultOpenRouterModel, client.model)
	}
	if client.baseURL != defaultOpenRouterBaseURL {
		t.Errorf("expected default base URL %s, got %s", defaultOpenRouterBaseURL, client.baseURL)
	}
}

func TestNewOpenRouterClient_AppendsChatPath(t *testing.T) {
	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: "http://localhost:9999/v1/",
	})
	if err != nil {
		t.Fatal(err)
	}
	if client.baseURL != "http://localhost:9999/v1/chat/completions" {
		t.Errorf("expected chat completions path appended, got %s", client.baseURL)
	}
}

func TestOpenRouterClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("missing or wrong auth header")
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %v", req.Messages)
		}
		if req.Messages[0].Content != "rewrite this" {
			t.Errorf("unexpected prompt: %q", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"files": {"a.go": "x"}}`}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := client.Generate(context.Background(), "rewrite this")
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"files": {"a.go": "x"}}` {
		t.Errorf("unexpected response content: %q", out)
	}
}

func TestOpenRouterClient_Generate_NonRetryableError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad request"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if calls != 1 {
		t.Errorf("400 should not be retried, got %d calls", calls)
	}
}

func TestOpenRouterClient_Generate_RetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "rate limited"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("expected ok after retry, got %q", out)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestOpenRouterClient_Generate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err = client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNew_SelectsOpenRouter(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenRouter.APIKey = "sk-test"

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := client.(*OpenRouterClient); !ok {
		t.Errorf("expected OpenRouter client, got %T", client)
	}
}

func TestNew_NoneConfigured(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if client != nil {
		t.Errorf("expected nil client when nothing is configured, got %T", client)
	}
}
