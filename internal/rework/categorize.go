package rework

import (
	"fmt"
	"strings"
)

// DefaultCategories is the stock configuration. Order matters: the first
// matching category wins, and the trailing catch-all claims the rest.
func DefaultCategories() []Category {
	return []Category{
		{Name: "documentation", Keywords: []string{"readme", "license", "changelog", "contributing", ".md", ".rst", ".txt"}},
		{Name: "configuration", Keywords: []string{"dockerfile", "makefile", ".json", ".yml", ".yaml", ".toml", ".ini", ".conf", ".cfg"}},
		{Name: "tests", Keywords: []string{"_test.", ".test.", ".spec.", "__tests__", "/test/", "/tests/"}},
		{Name: "styling", Keywords: []string{".css", ".scss", ".sass", ".less", ".styl"}},
		{Name: "components", Keywords: []string{".tsx", ".jsx", ".vue", ".svelte", "component"}},
		{Name: "core", Keywords: nil},
	}
}

// ValidateCategories checks a category configuration: names must be
// non-empty and unique, and exactly one catch-all (empty keyword list) must
// be present so that categorization stays total.
func ValidateCategories(categories []Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}

	seen := make(map[string]bool, len(categories))
	catchAlls := 0
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category name must not be empty")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate category name %q", c.Name)
		}
		seen[c.Name] = true
		if c.IsCatchAll() {
			catchAlls++
		}
	}

	if catchAlls != 1 {
		return fmt.Errorf("exactly one catch-all category is required, got %d", catchAlls)
	}
	return nil
}

// Categorize assigns every file to exactly one category: for each file the
// declared categories are scanned in order and the first whose keyword is a
// case-insensitive substring of the path wins; files nothing claims go to
// the catch-all. The input order of files is preserved within each bucket.
//
// The configuration is expected to pass ValidateCategories.
func Categorize(files []SourceFile, categories []Category) map[string][]SourceFile {
	out := make(map[string][]SourceFile, len(categories))
	for _, f := range files {
		name := matchCategory(f.Path, categories)
		out[name] = append(out[name], f)
	}
	return out
}

func matchCategory(path string, categories []Category) string {
	lower := strings.ToLower(path)
	for _, c := range categories {
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return c.Name
			}
		}
	}
	for _, c := range categories {
		if c.IsCatchAll() {
			return c.Name
		}
	}
	// Unvalidated config without a catch-all; the last bucket absorbs the rest.
	return categories[len(categories)-1].Name
}
