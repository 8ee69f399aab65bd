package rework

import "testing"

func mkFile(path string) SourceFile {
	return SourceFile{Path: path, Content: "content of " + path}
}

// --- Categorize ---

func TestCategorize_FirstDeclaredWins(t *testing.T) {
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "api", Keywords: []string{"/api/"}},
		{Name: "core"},
	}
	got := Categorize([]SourceFile{mkFile("src/api/service.css")}, cats)

	if len(got["styling"]) != 1 {
		t.Fatalf("expected src/api/service.css in styling, got %v", got)
	}
	if len(got["api"]) != 0 {
		t.Errorf("api matched later in declaration order should not receive the file")
	}
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	cats := []Category{
		{Name: "documentation", Keywords: []string{"readme"}},
		{Name: "core"},
	}
	got := Categorize([]SourceFile{mkFile("README.md")}, cats)
	if len(got["documentation"]) != 1 {
		t.Errorf("README.md should match keyword readme case-insensitively, got %v", got)
	}
}

func TestCategorize_CatchAllReceivesUnmatched(t *testing.T) {
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "core"},
	}
	got := Categorize([]SourceFile{mkFile("main.go")}, cats)
	if len(got["core"]) != 1 {
		t.Errorf("unmatched file should land in catch-all, got %v", got)
	}
}

func TestCategorize_Total(t *testing.T) {
	files := []SourceFile{
		mkFile("README.md"),
		mkFile("src/app.tsx"),
		mkFile("src/app.test.ts"),
		mkFile("styles/main.css"),
		mkFile("cmd/server/main.go"),
	}
	got := Categorize(files, DefaultCategories())

	assigned := 0
	for _, bucket := range got {
		assigned += len(bucket)
	}
	if assigned != len(files) {
		t.Errorf("expected all %d files assigned exactly once, got %d", len(files), assigned)
	}
}

func TestCategorize_PreservesInputOrder(t *testing.T) {
	files := []SourceFile{
		mkFile("b.css"),
		mkFile("a.css"),
		mkFile("c.css"),
	}
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "core"},
	}
	got := Categorize(files, cats)["styling"]
	if len(got) != 3 {
		t.Fatalf("expected 3 styling files, got %d", len(got))
	}
	for i, want := range []string{"b.css", "a.css", "c.css"} {
		if got[i].Path != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Path)
		}
	}
}

func TestCategorize_EmptyInput(t *testing.T) {
	got := Categorize(nil, DefaultCategories())
	for name, bucket := range got {
		if len(bucket) != 0 {
			t.Errorf("category %s should be empty, got %d files", name, len(bucket))
		}
	}
}

// --- ValidateCategories ---

func TestValidateCategories_Valid(t *testing.T) {
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "core"},
	}
	if err := ValidateCategories(cats); err != nil {
		t.Errorf("valid categories rejected: %v", err)
	}
}

func TestValidateCategories_Empty(t *testing.T) {
	if err := ValidateCategories(nil); err == nil {
		t.Error("expected error for empty category list")
	}
}

func TestValidateCategories_NoCatchAll(t *testing.T) {
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "tests", Keywords: []string{"_test."}},
	}
	if err := ValidateCategories(cats); err == nil {
		t.Error("expected error when no catch-all category exists")
	}
}

func TestValidateCategories_MultipleCatchAlls(t *testing.T) {
	cats := []Category{
		{Name: "misc"},
		{Name: "core"},
	}
	if err := ValidateCategories(cats); err == nil {
		t.Error("expected error for more than one catch-all category")
	}
}

func TestValidateCategories_DuplicateName(t *testing.T) {
	cats := []Category{
		{Name: "styling", Keywords: []string{".css"}},
		{Name: "styling", Keywords: []string{".scss"}},
		{Name: "core"},
	}
	if err := ValidateCategories(cats); err == nil {
		t.Error("expected error for duplicate category name")
	}
}

func TestValidateCategories_BlankName(t *testing.T) {
	cats := []Category{
		{Name: "", Keywords: []string{".css"}},
		{Name: "core"},
	}
	if err := ValidateCategories(cats); err == nil {
		t.Error("expected error for blank category name")
	}
}

func TestDefaultCategories_Valid(t *testing.T) {
	if err := ValidateCategories(DefaultCategories()); err != nil {
		t.Errorf("default categories should validate: %v", err)
	}
}

func TestDefaultCategories_CatchAllLast(t *testing.T) {
	cats := DefaultCategories()
	last := cats[len(cats)-1]
	if !last.IsCatchAll() {
		t.Errorf("last default category should be the catch-all, got %s with keywords %v", last.Name, last.Keywords)
	}
}
