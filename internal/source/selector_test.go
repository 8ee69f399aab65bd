package source

import (
	"errors"
	"sort"
	"testing"

	"github.com/reforge-labs/reforge/internal/config"
)

func entry(path string, size int64) TreeEntry {
	return TreeEntry{Path: path, Size: size}
}

func TestSelect_SkipsBinaries(t *testing.T) {
	entries := []TreeEntry{
		entry("logo.png", 500),
		entry("app.wasm", 500),
		entry("main.go", 500),
	}
	paths, err := Select(entries, config.SelectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "main.go" {
		t.Errorf("expected only main.go, got %v", paths)
	}
}

func TestSelect_SkipsOversized(t *testing.T) {
	entries := []TreeEntry{
		entry("huge.go", 1<<20),
		entry("small.go", 200),
	}
	paths, err := Select(entries, config.SelectConfig{MaxFileBytes: 1024})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "small.go" {
		t.Errorf("expected only small.go, got %v", paths)
	}
}

func TestSelect_SkipsVendoredPaths(t *testing.T) {
	entries := []TreeEntry{
		entry("node_modules/lodash/index.js", 300),
		entry("vendor/pkg/mod.go", 300),
		entry("src/index.js", 300),
	}
	paths, err := Select(entries, config.SelectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "src/index.js" {
		t.Errorf("expected only src/index.js, got %v", paths)
	}
}

func TestSelect_SkipsLockfiles(t *testing.T) {
	entries := []TreeEntry{
		entry("package-lock.json", 300),
		entry("yarn.lock", 300),
		entry("bundle.min.js", 300),
		entry("app.js.map", 300),
		entry("package.json", 300),
	}
	paths, err := Select(entries, config.SelectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "package.json" {
		t.Errorf("expected only package.json, got %v", paths)
	}
}

func TestSelect_EmptyIsError(t *testing.T) {
	_, err := Select([]TreeEntry{entry("photo.jpg", 100)}, config.SelectConfig{})
	if err == nil {
		t.Fatal("expected error when nothing is eligible")
	}
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Errorf("expected SelectionError, got %T", err)
	}
}

func TestSelect_CapsAtMaxFiles(t *testing.T) {
	var entries []TreeEntry
	for _, p := range []string{"a.go", "b.go", "c.go", "d.go", "e.go"} {
		entries = append(entries, entry(p, 100))
	}
	paths, err := Select(entries, config.SelectConfig{MaxFiles: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Errorf("expected 3 files, got %d", len(paths))
	}
}

func TestSelect_PrefersReadmeAndManifests(t *testing.T) {
	entries := []TreeEntry{
		entry("deep/nested/helper.go", 100),
		entry("README.md", 100),
		entry("package.json", 100),
		entry("other.txt", 100),
	}
	paths, err := Select(entries, config.SelectConfig{MaxFiles: 2})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(paths)
	want := []string{"README.md", "package.json"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestSelect_ReturnsPathOrder(t *testing.T) {
	entries := []TreeEntry{
		entry("z.go", 100),
		entry("a.go", 100),
		entry("m.go", 100),
	}
	paths, err := Select(entries, config.SelectConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !sort.StringsAreSorted(paths) {
		t.Errorf("selection should come back in path order, got %v", paths)
	}
}

func TestSelect_TotalBudgetSkipsOversized(t *testing.T) {
	// README ranks first and takes 900 of the 1000-byte budget; the 300-byte
	// source file would overflow, so the smaller one fills the remainder.
	entries := []TreeEntry{
		entry("README.md", 900),
		entry("big.go", 300),
		entry("tiny.go", 80),
	}
	paths, err := Select(entries, config.SelectConfig{MaxTotalBytes: 1000})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"README.md", "tiny.go"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestSelect_TotalBudgetAlwaysTakesTopPick(t *testing.T) {
	paths, err := Select([]TreeEntry{entry("README.md", 5000)}, config.SelectConfig{MaxTotalBytes: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "README.md" {
		t.Errorf("top pick should survive the budget, got %v", paths)
	}
}

func TestScoreFile_ShallowBeatsDeep(t *testing.T) {
	if scoreFile("main.go") <= scoreFile("a/b/c/d/main.go") {
		t.Error("shallower path should score higher")
	}
}
