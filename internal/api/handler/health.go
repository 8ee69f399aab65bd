package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/reforge-labs/reforge/pkg/apierr"
)

// HealthHandler serves liveness and readiness. Liveness is unconditional;
// readiness pings every backing service that was actually wired, so a
// degraded API (no queue) still reports ready for what it can do.
type HealthHandler struct {
	pool   *pgxpool.Pool
	valkey valkey.Client
}

func NewHealthHandler(pool *pgxpool.Pool, vk valkey.Client) *HealthHandler {
	return &HealthHandler{pool: pool, valkey: vk}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			writeAPIError(w, r, nil, apierr.DatabaseNotReady())
			return
		}
	}
	if h.valkey != nil {
		if err := h.valkey.Do(r.Context(), h.valkey.B().Ping().Build()).Error(); err != nil {
			writeAPIError(w, r, nil, apierr.QueueNotReady())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
