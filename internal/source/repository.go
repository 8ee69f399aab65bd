package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/reforge-labs/reforge/internal/rework"
)

// skipDirs are directory names never worth reworking: VCS internals,
// dependency trees and build output.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	".next":        true,
	".cache":       true,
	"__pycache__":  true,
}

// ListDir walks a local working directory (a clone, an extracted upload, a
// bucket sync) and returns its files as repo-relative, slash-separated
// entries. Skip-listed directories are not descended into.
func ListDir(root string) ([]TreeEntry, error) {
	var entries []TreeEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[filepath.Base(path)] && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		var size int64
		if fi, err := os.Stat(path); err == nil {
			size = fi.Size()
		}

		entries = append(entries, TreeEntry{Path: filepath.ToSlash(rel), Size: size})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}

// ReadFiles loads the given repo-relative paths from a working directory.
func ReadFiles(root string, paths []string) ([]rework.SourceFile, error) {
	files := make([]rework.SourceFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, rework.SourceFile{Path: p, Content: string(data)})
	}
	return files, nil
}
