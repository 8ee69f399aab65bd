package rework

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when a run is started with an empty selection; the
// runner refuses to start rather than producing an empty archive.
var ErrNoFiles = errors.New("no files to process")

// MalformedResponseError marks a generation response the pipeline cannot
// use: not valid JSON, or no usable "files" object. It is retried and
// escalates to GenerationError once attempts are exhausted.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed generation response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed generation response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// GenerationError is the terminal failure of a batch whose retry budget is
// exhausted. Unless the run is configured to continue past failed
// categories, it aborts the entire run.
type GenerationError struct {
	Category   string
	BatchIndex int
	BatchCount int
	Attempts   int
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("category %q batch %d/%d failed after %d attempts: %v",
		e.Category, e.BatchIndex, e.BatchCount, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
