package rework

// DefaultMaxBatchChars is the per-batch content budget used when a run does
// not override it.
const DefaultMaxBatchChars = 20000

// MakeBatches packs files, in their given order, into batches whose summed
// content length stays within maxChars. A batch is closed before adding a
// file that would push a non-empty batch over the budget. A single file
// larger than the budget is never split: it forms its own over-budget batch
// of one. Empty input yields no batches.
func MakeBatches(category string, files []SourceFile, maxChars int) []Batch {
	if len(files) == 0 {
		return nil
	}

	var batches []Batch
	current := Batch{Category: category}

	for _, f := range files {
		size := len(f.Content)
		if len(current.Files) > 0 && current.CharCount+size > maxChars {
			batches = append(batches, current)
			current = Batch{Category: category}
		}
		current.Files = append(current.Files, f)
		current.CharCount += size
	}

	if len(current.Files) > 0 {
		batches = append(batches, current)
	}
	return batches
}
