package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
	"github.com/reforge-labs/reforge/internal/store/postgres"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

type RunHandler struct {
	logger   *slog.Logger
	store    *store.Store
	producer *pipeline.Producer
	minio    *minioclient.Client
}

func NewRunHandler(logger *slog.Logger, s *store.Store, producer *pipeline.Producer, minio *minioclient.Client) *RunHandler {
	return &RunHandler{logger: logger, store: s, producer: producer, minio: minio}
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := h.store.ListReworkRunsByProject(r.Context(), postgres.ListReworkRunsByProjectParams{
		Slug:   projectSlug,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.RunListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, run, ok := resolveProjectRun(w, r, h.logger, h.store)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// triggerRequest carries the optional per-run overrides. Absent fields fall
// back to the service configuration when the worker resolves the run.
type triggerRequest struct {
	SourceID          string            `json:"source_id"`
	Categories        []rework.Category `json:"categories"`
	MaxBatchChars     *int              `json:"max_batch_chars"`
	RetryMaxAttempts  *int              `json:"retry_max_attempts"`
	RetryBackoffMs    *int              `json:"retry_backoff_ms"`
	ContinueOnFailure *bool             `json:"continue_on_failure"`
}

func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	if h.producer == nil {
		writeAPIError(w, r, h.logger, apierr.QueueUnavailable(errors.New("no queue configured")))
		return
	}

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, r, h.logger, apierr.InvalidRequestBody())
		return
	}
	// source_id in the query wins over the body.
	if sid := r.URL.Query().Get("source_id"); sid != "" {
		req.SourceID = sid
	}

	if apiErr := validateTriggerRequest(req); apiErr != nil {
		writeAPIError(w, r, h.logger, apiErr)
		return
	}

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	src, apiErr := h.resolveSource(r, project, req.SourceID)
	if apiErr != nil {
		writeAPIError(w, r, h.logger, apiErr)
		return
	}

	params := postgres.CreateReworkRunParams{
		ProjectID: project.ID,
		SourceID:  pgtype.UUID{Bytes: src.ID, Valid: true},
	}
	if len(req.Categories) > 0 {
		raw, err := json.Marshal(req.Categories)
		if err != nil {
			writeAPIError(w, r, h.logger, apierr.InternalError(err))
			return
		}
		params.Categories = raw
	}
	if req.MaxBatchChars != nil {
		params.MaxBatchChars = pgtype.Int4{Int32: int32(*req.MaxBatchChars), Valid: true}
	}
	if req.RetryMaxAttempts != nil {
		params.RetryMaxAttempts = pgtype.Int4{Int32: int32(*req.RetryMaxAttempts), Valid: true}
	}
	if req.RetryBackoffMs != nil {
		params.RetryBackoffMs = pgtype.Int4{Int32: int32(*req.RetryBackoffMs), Valid: true}
	}
	if req.ContinueOnFailure != nil {
		params.ContinueOnFailure = pgtype.Bool{Bool: *req.ContinueOnFailure, Valid: true}
	}

	run, err := h.store.CreateReworkRun(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.RunCreateFailed(err))
		return
	}

	// An enqueue failure is not fatal: the run stays queued and the
	// scheduler re-enqueues it.
	if _, err := h.producer.Enqueue(r.Context(), pipeline.ReworkMessage{
		RunID:     run.ID,
		ProjectID: project.ID,
		SourceID:  src.ID,
		Trigger:   "manual",
	}); err != nil {
		h.logger.Warn("enqueue failed, run left for scheduler",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *RunHandler) Review(w http.ResponseWriter, r *http.Request) {
	_, run, ok := resolveProjectRun(w, r, h.logger, h.store)
	if !ok {
		return
	}

	if !run.Review.Valid || run.Review.String == "" {
		writeAPIError(w, r, h.logger, apierr.ReviewNotReady())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": run.ID,
		"review": run.Review.String,
	})
}

func (h *RunHandler) Archive(w http.ResponseWriter, r *http.Request) {
	project, run, ok := resolveProjectRun(w, r, h.logger, h.store)
	if !ok {
		return
	}

	if run.Status != postgres.RunStatusCompleted || !run.ArchiveKey.Valid {
		writeAPIError(w, r, h.logger, apierr.ArchiveNotReady())
		return
	}
	if h.minio == nil {
		writeAPIError(w, r, h.logger, apierr.ArchiveFetchFailed(errors.New("object storage not configured")))
		return
	}

	size, err := h.minio.StatFile(r.Context(), run.ArchiveKey.String)
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.ArchiveFetchFailed(err))
		return
	}

	obj, err := h.minio.DownloadFile(r.Context(), run.ArchiveKey.String)
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.ArchiveFetchFailed(err))
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.Slug+"-reworked.zip"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warn("archive stream interrupted",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
	}
}

// resolveSource picks the run's source: the explicit one when given,
// otherwise the project's most recently added source.
func (h *RunHandler) resolveSource(r *http.Request, project postgres.Project, sourceID string) (postgres.Source, *apierr.Error) {
	if sourceID != "" {
		id, err := uuid.Parse(sourceID)
		if err != nil {
			return postgres.Source{}, apierr.InvalidSourceID()
		}
		src, err := h.store.GetSource(r.Context(), id)
		if err != nil {
			if apierr.IsNotFound(err) {
				return postgres.Source{}, apierr.SourceNotFound()
			}
			return postgres.Source{}, apierr.InternalError(err)
		}
		if src.ProjectID != project.ID {
			return postgres.Source{}, apierr.SourceNotFound()
		}
		return src, nil
	}

	src, err := h.store.GetLatestSourceByProject(r.Context(), project.ID)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.Source{}, apierr.NoSources()
		}
		return postgres.Source{}, apierr.InternalError(err)
	}
	return src, nil
}

func validateTriggerRequest(req triggerRequest) *apierr.Error {
	if len(req.Categories) > 0 {
		if err := rework.ValidateCategories(req.Categories); err != nil {
			return apierr.InvalidRunOption(err.Error())
		}
	}
	if req.MaxBatchChars != nil && *req.MaxBatchChars <= 0 {
		return apierr.InvalidRunOption("max_batch_chars must be positive")
	}
	if req.RetryMaxAttempts != nil && *req.RetryMaxAttempts < 1 {
		return apierr.InvalidRunOption("retry_max_attempts must be at least 1")
	}
	if req.RetryBackoffMs != nil && *req.RetryBackoffMs < 0 {
		return apierr.InvalidRunOption("retry_backoff_ms must not be negative")
	}
	return nil
}
