package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
	"github.com/reforge-labs/reforge/internal/store/postgres"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

type SourceHandler struct {
	logger *slog.Logger
	store  *store.Store
	minio  *minioclient.Client
}

// NewSourceHandler creates the source CRUD handler. minio may be nil; then
// deleting an upload source leaves its object behind.
func NewSourceHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client) *SourceHandler {
	return &SourceHandler{logger: logger, store: s, minio: minio}
}

func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	sources, err := h.store.ListSourcesByProject(r.Context(), project.ID)
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.SourceListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "sourceID"))
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.InvalidSourceID())
		return
	}

	project, ok := getProjectOr404(w, r, h.logger, h.store, chi.URLParam(r, "slug"))
	if !ok {
		return
	}

	source, ok := getSourceOr404(w, r, h.logger, h.store, project.ID, sourceID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, source)
}

func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	var req struct {
		Type string `json:"type"`
		URI  string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, r, h.logger, apierr.InvalidRequestBody())
		return
	}

	if err := validateSourceType(req.Type); err != nil {
		writeAPIError(w, r, h.logger, err)
		return
	}
	if err := validateSourceURI(req.Type, req.URI); err != nil {
		writeAPIError(w, r, h.logger, err)
		return
	}

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	source, err := h.store.CreateSource(r.Context(), postgres.CreateSourceParams{
		ProjectID: project.ID,
		Type:      req.Type,
		URI:       req.URI,
	})
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.SourceCreateFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "sourceID"))
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.InvalidSourceID())
		return
	}

	project, ok := getProjectOr404(w, r, h.logger, h.store, chi.URLParam(r, "slug"))
	if !ok {
		return
	}

	src, ok := getSourceOr404(w, r, h.logger, h.store, project.ID, sourceID)
	if !ok {
		return
	}

	if err := h.store.DeleteSource(r.Context(), sourceID); err != nil {
		writeAPIError(w, r, h.logger, apierr.SourceDeleteFailed(err))
		return
	}

	// Best-effort cleanup of the uploaded object; an orphan is only wasted
	// space.
	if src.Type == "upload" && src.ObjectKey.Valid && h.minio != nil {
		if err := h.minio.RemoveFile(r.Context(), src.ObjectKey.String); err != nil {
			h.logger.Warn("remove uploaded object",
				slog.String("object_key", src.ObjectKey.String),
				slog.String("error", err.Error()))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
