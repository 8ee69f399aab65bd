package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) apierr.Code {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Error.Code
}

func TestRunHandler_Trigger_NoQueue(t *testing.T) {
	rh := &RunHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/slug/runs", nil)
	w := httptest.NewRecorder()

	rh.Trigger(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeQueueUnavailable {
		t.Errorf("expected code %s, got %s", apierr.CodeQueueUnavailable, code)
	}
}

func TestRunHandler_Trigger_InvalidBody(t *testing.T) {
	rh := &RunHandler{producer: &pipeline.Producer{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/slug/runs", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()

	rh.Trigger(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeInvalidRequestBody {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRequestBody, code)
	}
}

func TestRunHandler_Trigger_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero batch budget", map[string]any{"max_batch_chars": 0}},
		{"negative batch budget", map[string]any{"max_batch_chars": -100}},
		{"zero retry attempts", map[string]any{"retry_max_attempts": 0}},
		{"negative backoff", map[string]any{"retry_backoff_ms": -1}},
		{"category without name", map[string]any{
			"categories": []map[string]any{{"name": "", "keywords": []string{".go"}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rh := &RunHandler{producer: &pipeline.Producer{}}
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/slug/runs", bytes.NewReader(body))
			w := httptest.NewRecorder()

			rh.Trigger(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if code := decodeErrorCode(t, w); code != apierr.CodeInvalidRunOption {
				t.Errorf("expected code %s, got %s", apierr.CodeInvalidRunOption, code)
			}
		})
	}
}

func TestRunHandler_Get_InvalidRunID(t *testing.T) {
	rh := &RunHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/slug/runs/not-a-uuid", nil)
	w := httptest.NewRecorder()

	rh.Get(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != apierr.CodeInvalidRunID {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRunID, code)
	}
}

func TestValidateTriggerRequest_Valid(t *testing.T) {
	maxChars := 5000
	attempts := 3
	backoff := 500
	cont := true
	req := triggerRequest{
		Categories: []rework.Category{
			{Name: "code", Keywords: []string{".go"}},
			{Name: "misc"},
		},
		MaxBatchChars:     &maxChars,
		RetryMaxAttempts:  &attempts,
		RetryBackoffMs:    &backoff,
		ContinueOnFailure: &cont,
	}

	if err := validateTriggerRequest(req); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestValidateTriggerRequest_EmptyIsValid(t *testing.T) {
	if err := validateTriggerRequest(triggerRequest{}); err != nil {
		t.Errorf("empty request must be valid, got %v", err)
	}
}

func TestValidateTriggerRequest_DuplicateCategory(t *testing.T) {
	req := triggerRequest{
		Categories: []rework.Category{
			{Name: "code", Keywords: []string{".go"}},
			{Name: "code", Keywords: []string{".py"}},
		},
	}

	err := validateTriggerRequest(req)
	if err == nil {
		t.Fatal("expected error for duplicate category names")
	}
	if err.Code() != apierr.CodeInvalidRunOption {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRunOption, err.Code())
	}
}
