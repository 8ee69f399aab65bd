package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reforge-labs/reforge/pkg/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAPIError writes the structured error response. Server-side failures
// are logged with the request path that produced them; client errors are
// the caller's problem and stay out of the log.
func writeAPIError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, e *apierr.Error) {
	if e.Status() >= 500 && logger != nil {
		logger.Error(e.Message(),
			slog.String("code", string(e.Code())),
			slog.String("path", r.URL.Path),
			slog.String("error", e.Error()))
	}
	writeJSON(w, e.Status(), e.Response())
}
