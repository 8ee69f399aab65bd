// Package rework drives the regeneration pipeline: analyzed files are
// categorized by path keywords, packed into character-budgeted batches, and
// regenerated one batch at a time through a Generator with bounded retry.
package rework

// SourceFile is one analyzed input file. Paths are repo-relative with
// forward slashes and unique within a run's selection; content is read-only
// as far as the pipeline is concerned.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Category is a named bucket files are sorted into before batching.
// Keywords are matched as case-insensitive substrings of the file path, in
// order. A category with no keywords is the catch-all: it claims every file
// no earlier category matched.
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// IsCatchAll reports whether the category collects otherwise-unmatched files.
func (c Category) IsCatchAll() bool {
	return len(c.Keywords) == 0
}

// Batch is a bounded group of files sent together in one generation request.
type Batch struct {
	Category  string
	Files     []SourceFile
	CharCount int
}

// GeneratedFileSet maps file paths to regenerated contents. It is built up
// across successful batches and handed to the archive builder at the end of
// a run.
type GeneratedFileSet map[string]string
