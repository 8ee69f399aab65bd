package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Project errors.
const (
	CodeProjectNotFound     Code = "PROJECT_NOT_FOUND"
	CodeSlugTaken           Code = "SLUG_TAKEN"
	CodeProjectCreateFailed Code = "PROJECT_CREATE_FAILED"
	CodeProjectUpdateFailed Code = "PROJECT_UPDATE_FAILED"
	CodeProjectDeleteFailed Code = "PROJECT_DELETE_FAILED"
	CodeProjectListFailed   Code = "PROJECT_LIST_FAILED"
	CodeProjectCountFailed  Code = "PROJECT_COUNT_FAILED"
)

// Source errors.
const (
	CodeSourceNotFound     Code = "SOURCE_NOT_FOUND"
	CodeInvalidSourceID    Code = "INVALID_SOURCE_ID"
	CodeInvalidSourceType  Code = "INVALID_SOURCE_TYPE"
	CodeInvalidSourceURI   Code = "INVALID_SOURCE_URI"
	CodeSourceCreateFailed Code = "SOURCE_CREATE_FAILED"
	CodeSourceDeleteFailed Code = "SOURCE_DELETE_FAILED"
	CodeSourceListFailed   Code = "SOURCE_LIST_FAILED"
)

// Rework run errors.
const (
	CodeRunNotFound      Code = "RUN_NOT_FOUND"
	CodeInvalidRunID     Code = "INVALID_RUN_ID"
	CodeRunCreateFailed  Code = "RUN_CREATE_FAILED"
	CodeRunListFailed    Code = "RUN_LIST_FAILED"
	CodeNoSources        Code = "NO_SOURCES"
	CodeInvalidRunOption Code = "INVALID_RUN_OPTION"
	CodeQueueUnavailable Code = "QUEUE_UNAVAILABLE"
)

// Run artifact errors.
const (
	CodeReviewNotReady     Code = "REVIEW_NOT_READY"
	CodeArchiveNotReady    Code = "ARCHIVE_NOT_READY"
	CodeArchiveFetchFailed Code = "ARCHIVE_FETCH_FAILED"
	CodeEventsUnavailable  Code = "EVENTS_UNAVAILABLE"
)

// Validation errors.
const (
	CodeSlugRequired Code = "SLUG_REQUIRED"
	CodeSlugInvalid  Code = "SLUG_INVALID"
	CodeNameRequired Code = "NAME_REQUIRED"
	CodeNameTooLong  Code = "NAME_TOO_LONG"
)

// Upload errors.
const (
	CodeFileRequired Code = "FILE_REQUIRED"
	CodeUploadFailed Code = "UPLOAD_FAILED"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
	CodeQueueNotReady    Code = "QUEUE_NOT_READY"
)
