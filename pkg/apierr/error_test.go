package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", RunNotFound())

	if !errors.Is(wrapped, RunNotFound()) {
		t.Error("errors.Is should match two instances with the same code")
	}
	if errors.Is(wrapped, ProjectNotFound()) {
		t.Error("errors.Is should not match across codes")
	}
}

func TestWrapKeepsCauseOutOfResponse(t *testing.T) {
	cause := errors.New("pq: connection refused")
	e := InternalError(cause)

	if !errors.Is(e, cause) {
		t.Error("cause should unwrap")
	}
	if !strings.Contains(e.Error(), "connection refused") {
		t.Errorf("log form should include the cause, got %q", e.Error())
	}

	body, err := json.Marshal(e.Response())
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	if strings.Contains(string(body), "connection refused") {
		t.Errorf("response body leaked the cause: %s", body)
	}
}

func TestCatalogStatuses(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ProjectNotFound(), http.StatusNotFound},
		{SlugTaken(), http.StatusConflict},
		{ReviewNotReady(), http.StatusConflict},
		{ArchiveNotReady(), http.StatusConflict},
		{InvalidRequestBody(), http.StatusBadRequest},
		{InternalError(errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.Status() != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Code(), tt.err.Status(), tt.want)
		}
	}
}
