package rework

// EventKind identifies a progress event variant. The set is closed: every
// event the runner emits is one of the constants below.
type EventKind string

const (
	// EventBatchStarted fires before each generation call for a batch.
	EventBatchStarted EventKind = "batch_started"
	// EventBatchFailed fires after each failed attempt, including the last.
	EventBatchFailed EventKind = "batch_failed"
	// EventCategoryDone fires once all of a category's batches succeeded.
	EventCategoryDone EventKind = "category_done"
	// EventCompleted fires after the last category; FileCount carries the
	// size of the merged file set.
	EventCompleted EventKind = "completed"
	// EventFatal fires when the run aborts; Err carries the terminal message.
	EventFatal EventKind = "fatal"
)

// Event is one progress report from the runner. Kind selects the variant;
// fields not listed for a kind are zero. BatchIndex is 1-based.
//
//	batch_started: Category, BatchIndex, BatchCount, FileCount
//	batch_failed:  Category, BatchIndex, BatchCount, Attempt, Err
//	category_done: Category, BatchCount
//	completed:     FileCount
//	fatal:         Category (when a batch caused it), Err
type Event struct {
	Kind       EventKind `json:"kind"`
	Category   string    `json:"category,omitempty"`
	BatchIndex int       `json:"batch_index,omitempty"`
	BatchCount int       `json:"batch_count,omitempty"`
	FileCount  int       `json:"file_count,omitempty"`
	Attempt    int       `json:"attempt,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// Sink receives progress events. The runner calls it synchronously between
// generation calls, so implementations should hand off quickly.
type Sink func(Event)
