// Package archive bundles generated file sets into zip archives and reads
// them back for inspection.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// BuildError reports a failure while assembling an archive. Archive failures
// abort the run that produced them.
type BuildError struct {
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("archive entry %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("build archive: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Build packs every file into a zip archive, one entry per path, content
// verbatim. Entries are written in sorted path order so identical inputs
// produce identical archives. Paths must be relative and must not escape
// the archive root; a bad path fails the build rather than being dropped
// or rewritten.
func Build(files map[string]string) ([]byte, error) {
	if len(files) == 0 {
		return nil, &BuildError{Err: fmt.Errorf("no files to archive")}
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		if err := checkPath(path); err != nil {
			return nil, &BuildError{Path: path, Err: err}
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, path := range paths {
		w, err := zw.Create(path)
		if err != nil {
			zw.Close()
			return nil, &BuildError{Path: path, Err: err}
		}
		if _, err := w.Write([]byte(files[path])); err != nil {
			zw.Close()
			return nil, &BuildError{Path: path, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &BuildError{Err: err}
	}
	return buf.Bytes(), nil
}

// checkPath rejects entries that would extract outside the archive root.
func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return fmt.Errorf("path must be relative with forward slashes")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fmt.Errorf("path escapes archive root")
		}
	}
	return nil
}

// Entry describes one archive member.
type Entry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Manifest lists the entries of a zip archive without extracting it.
func Manifest(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{Path: f.Name, Size: int64(f.UncompressedSize64)})
	}
	return entries, nil
}
