package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

// getProjectOr404 fetches a project by slug and writes a 404/500 error on failure.
// Returns the project and true on success, or zero-value and false if an error was written.
func getProjectOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, slug string) (postgres.Project, bool) {
	project, err := s.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, r, logger, apierr.ProjectNotFound())
		} else {
			writeAPIError(w, r, logger, apierr.InternalError(err))
		}
		return postgres.Project{}, false
	}
	return project, true
}

// getSourceOr404 fetches a source by UUID, scoped to a project. A source
// that exists under a different project is reported as not found.
func getSourceOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, projectID, id uuid.UUID) (postgres.Source, bool) {
	source, err := s.GetSource(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, r, logger, apierr.SourceNotFound())
		} else {
			writeAPIError(w, r, logger, apierr.InternalError(err))
		}
		return postgres.Source{}, false
	}
	if source.ProjectID != projectID {
		writeAPIError(w, r, logger, apierr.SourceNotFound())
		return postgres.Source{}, false
	}
	return source, true
}

// getRunOr404 fetches a rework run by UUID, scoped to a project. A run that
// exists under a different project is reported as not found.
func getRunOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, projectID, id uuid.UUID) (postgres.ReworkRun, bool) {
	run, err := s.GetReworkRun(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, r, logger, apierr.RunNotFound())
		} else {
			writeAPIError(w, r, logger, apierr.InternalError(err))
		}
		return postgres.ReworkRun{}, false
	}
	if run.ProjectID != projectID {
		writeAPIError(w, r, logger, apierr.RunNotFound())
		return postgres.ReworkRun{}, false
	}
	return run, true
}

// resolveProjectRun parses {slug} and {runID} from the route and loads both
// records, writing the error response on any failure.
func resolveProjectRun(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store) (postgres.Project, postgres.ReworkRun, bool) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeAPIError(w, r, logger, apierr.InvalidRunID())
		return postgres.Project{}, postgres.ReworkRun{}, false
	}

	project, ok := getProjectOr404(w, r, logger, s, chi.URLParam(r, "slug"))
	if !ok {
		return postgres.Project{}, postgres.ReworkRun{}, false
	}

	run, ok := getRunOr404(w, r, logger, s, project.ID, runID)
	if !ok {
		return postgres.Project{}, postgres.ReworkRun{}, false
	}

	return project, run, true
}
