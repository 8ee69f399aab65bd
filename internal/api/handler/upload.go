package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
	"github.com/reforge-labs/reforge/internal/store/postgres"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

type UploadHandler struct {
	logger   *slog.Logger
	store    *store.Store
	minio    *minioclient.Client
	producer *pipeline.Producer
}

func NewUploadHandler(logger *slog.Logger, s *store.Store, minio *minioclient.Client, producer *pipeline.Producer) *UploadHandler {
	return &UploadHandler{logger: logger, store: s, minio: minio, producer: producer}
}

// Upload accepts a zip archive, stores it, registers it as an upload source
// and kicks off a rework run over it.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectSlug := chi.URLParam(r, "slug")

	// Max 100MB upload
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024*1024)

	project, ok := getProjectOr404(w, r, h.logger, h.store, projectSlug)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.FileRequired())
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "upload-" + uuid.New().String()[:8] + ".zip"
	}

	uploadID := uuid.New().String()
	objectKey := fmt.Sprintf("uploads/%s/%s/%s", project.Slug, uploadID, filename)

	// The object goes in first: source and run rows must never reference a
	// missing object, while an orphaned object references nothing.
	if err := h.minio.UploadFile(r.Context(), objectKey, file, header.Size); err != nil {
		writeAPIError(w, r, h.logger, apierr.UploadFailed(err))
		return
	}

	var (
		source postgres.Source
		run    postgres.ReworkRun
	)
	apiErr := apierr.SourceCreateFailed
	err = h.store.WithTx(r.Context(), func(q *postgres.Queries) error {
		var err error
		source, err = q.CreateSource(r.Context(), postgres.CreateSourceParams{
			ProjectID: project.ID,
			Type:      "upload",
			URI:       filename,
			ObjectKey: pgtype.Text{String: objectKey, Valid: true},
		})
		if err != nil {
			return err
		}

		apiErr = apierr.RunCreateFailed
		run, err = q.CreateReworkRun(r.Context(), postgres.CreateReworkRunParams{
			ProjectID: project.ID,
			SourceID:  pgtype.UUID{Bytes: source.ID, Valid: true},
		})
		return err
	})
	if err != nil {
		writeAPIError(w, r, h.logger, apiErr(err))
		return
	}

	if h.producer != nil {
		h.enqueue(r.Context(), run, source, project)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"source":     source,
		"run":        run,
		"object_key": objectKey,
	})
}

func (h *UploadHandler) enqueue(ctx context.Context, run postgres.ReworkRun, source postgres.Source, project postgres.Project) {
	msg := pipeline.ReworkMessage{
		RunID:     run.ID,
		ProjectID: project.ID,
		SourceID:  source.ID,
		Trigger:   "manual",
	}
	if _, err := h.producer.Enqueue(ctx, msg); err != nil {
		h.logger.Error("enqueue rework run", slog.String("error", err.Error()))
	}
}
