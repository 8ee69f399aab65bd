package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Project ---

func ProjectNotFound() *Error {
	return New(CodeProjectNotFound, http.StatusNotFound, "Project not found")
}

func SlugTaken() *Error {
	return New(CodeSlugTaken, http.StatusConflict, "A project with this slug already exists")
}

func ProjectCreateFailed(cause error) *Error {
	return Wrap(CodeProjectCreateFailed, http.StatusInternalServerError, "Failed to create project", cause)
}

func ProjectUpdateFailed(cause error) *Error {
	return Wrap(CodeProjectUpdateFailed, http.StatusInternalServerError, "Failed to update project", cause)
}

func ProjectDeleteFailed(cause error) *Error {
	return Wrap(CodeProjectDeleteFailed, http.StatusInternalServerError, "Failed to delete project", cause)
}

func ProjectListFailed(cause error) *Error {
	return Wrap(CodeProjectListFailed, http.StatusInternalServerError, "Failed to list projects", cause)
}

func ProjectCountFailed(cause error) *Error {
	return Wrap(CodeProjectCountFailed, http.StatusInternalServerError, "Failed to count projects", cause)
}

// --- Source ---

func SourceNotFound() *Error {
	return New(CodeSourceNotFound, http.StatusNotFound, "Source not found")
}

func InvalidSourceID() *Error {
	return New(CodeInvalidSourceID, http.StatusBadRequest, "Invalid source ID")
}

func InvalidSourceType() *Error {
	return New(CodeInvalidSourceType, http.StatusBadRequest, "source_type must be one of: github, git, upload, s3")
}

func InvalidSourceURI(reason string) *Error {
	return New(CodeInvalidSourceURI, http.StatusBadRequest, "Invalid source URI: "+reason)
}

func SourceCreateFailed(cause error) *Error {
	return Wrap(CodeSourceCreateFailed, http.StatusInternalServerError, "Failed to create source", cause)
}

func SourceDeleteFailed(cause error) *Error {
	return Wrap(CodeSourceDeleteFailed, http.StatusInternalServerError, "Failed to delete source", cause)
}

func SourceListFailed(cause error) *Error {
	return Wrap(CodeSourceListFailed, http.StatusInternalServerError, "Failed to list sources", cause)
}

// --- Rework Run ---

func RunNotFound() *Error {
	return New(CodeRunNotFound, http.StatusNotFound, "Rework run not found")
}

func InvalidRunID() *Error {
	return New(CodeInvalidRunID, http.StatusBadRequest, "Invalid run ID")
}

func RunCreateFailed(cause error) *Error {
	return Wrap(CodeRunCreateFailed, http.StatusInternalServerError, "Failed to create rework run", cause)
}

func RunListFailed(cause error) *Error {
	return Wrap(CodeRunListFailed, http.StatusInternalServerError, "Failed to list rework runs", cause)
}

func NoSources() *Error {
	return New(CodeNoSources, http.StatusBadRequest, "Project has no sources to rework")
}

func InvalidRunOption(reason string) *Error {
	return New(CodeInvalidRunOption, http.StatusBadRequest, "Invalid run option: "+reason)
}

func QueueUnavailable(cause error) *Error {
	return Wrap(CodeQueueUnavailable, http.StatusServiceUnavailable, "Work queue unavailable", cause)
}

// --- Run artifacts ---

func ReviewNotReady() *Error {
	return New(CodeReviewNotReady, http.StatusConflict, "Review has not been generated yet")
}

func ArchiveNotReady() *Error {
	return New(CodeArchiveNotReady, http.StatusConflict, "Archive is not ready; run has not completed")
}

func ArchiveFetchFailed(cause error) *Error {
	return Wrap(CodeArchiveFetchFailed, http.StatusInternalServerError, "Failed to fetch archive", cause)
}

func EventsUnavailable(cause error) *Error {
	return Wrap(CodeEventsUnavailable, http.StatusServiceUnavailable, "Event stream unavailable", cause)
}

// --- Validation ---

func SlugRequired() *Error {
	return New(CodeSlugRequired, http.StatusBadRequest, "Slug is required")
}

func SlugInvalid() *Error {
	return New(CodeSlugInvalid, http.StatusBadRequest, "Slug must be 3-63 chars, lowercase alphanumeric and hyphens, must start/end with alphanumeric")
}

func NameRequired() *Error {
	return New(CodeNameRequired, http.StatusBadRequest, "Name is required")
}

func NameTooLong() *Error {
	return New(CodeNameTooLong, http.StatusBadRequest, "Name must be 255 characters or fewer")
}

// --- Upload ---

func FileRequired() *Error {
	return New(CodeFileRequired, http.StatusBadRequest, "File is required (multipart field 'file')")
}

func UploadFailed(cause error) *Error {
	return Wrap(CodeUploadFailed, http.StatusInternalServerError, "Failed to upload file", cause)
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}

func QueueNotReady() *Error {
	return New(CodeQueueNotReady, http.StatusServiceUnavailable, "Run queue not ready")
}
