package rework

import (
	"strings"
	"testing"
)

func mkSized(path string, size int) SourceFile {
	return SourceFile{Path: path, Content: strings.Repeat("x", size)}
}

func TestMakeBatches_Empty(t *testing.T) {
	if got := MakeBatches("core", nil, 100); got != nil {
		t.Errorf("empty input should produce zero batches, got %v", got)
	}
}

func TestMakeBatches_SingleBatchUnderBudget(t *testing.T) {
	files := []SourceFile{mkSized("a.go", 10), mkSized("b.go", 20)}
	got := MakeBatches("core", files, 100)
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0].Files) != 2 {
		t.Errorf("expected 2 files in batch, got %d", len(got[0].Files))
	}
	if got[0].CharCount != 30 {
		t.Errorf("expected char count 30, got %d", got[0].CharCount)
	}
	if got[0].Category != "core" {
		t.Errorf("expected category core, got %s", got[0].Category)
	}
}

func TestMakeBatches_ClosesBeforeExceeding(t *testing.T) {
	files := []SourceFile{mkSized("a.go", 5), mkSized("b.go", 5), mkSized("c.go", 5)}
	got := MakeBatches("core", files, 12)
	if len(got) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(got))
	}
	if len(got[0].Files) != 2 || got[0].Files[0].Path != "a.go" || got[0].Files[1].Path != "b.go" {
		t.Errorf("first batch should hold a.go and b.go, got %v", got[0].Files)
	}
	if len(got[1].Files) != 1 || got[1].Files[0].Path != "c.go" {
		t.Errorf("second batch should hold c.go, got %v", got[1].Files)
	}
	for _, b := range got {
		if b.CharCount > 12 {
			t.Errorf("batch exceeds budget: %d chars", b.CharCount)
		}
	}
}

func TestMakeBatches_ExactFitStays(t *testing.T) {
	files := []SourceFile{mkSized("a.go", 5), mkSized("b.go", 5)}
	got := MakeBatches("core", files, 10)
	if len(got) != 1 {
		t.Fatalf("files summing exactly to the budget should share one batch, got %d batches", len(got))
	}
}

func TestMakeBatches_OversizedFileOwnBatch(t *testing.T) {
	files := []SourceFile{mkSized("small.go", 5), mkSized("huge.go", 100), mkSized("tiny.go", 3)}
	got := MakeBatches("core", files, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(got))
	}
	if len(got[1].Files) != 1 || got[1].Files[0].Path != "huge.go" {
		t.Errorf("oversized file should sit alone in its batch, got %v", got[1].Files)
	}
	if got[1].CharCount != 100 {
		t.Errorf("oversized batch should report its true size, got %d", got[1].CharCount)
	}
}

func TestMakeBatches_OversizedOnly(t *testing.T) {
	got := MakeBatches("core", []SourceFile{mkSized("huge.go", 500)}, 10)
	if len(got) != 1 {
		t.Fatalf("single oversized file should yield exactly 1 batch, got %d", len(got))
	}
	if got[0].CharCount != 500 {
		t.Errorf("expected char count 500, got %d", got[0].CharCount)
	}
}

func TestMakeBatches_PreservesAllFilesInOrder(t *testing.T) {
	files := []SourceFile{
		mkSized("a.go", 7), mkSized("b.go", 3), mkSized("c.go", 9),
		mkSized("d.go", 1), mkSized("e.go", 12),
	}
	got := MakeBatches("core", files, 10)

	var flat []string
	for _, b := range got {
		for _, f := range b.Files {
			flat = append(flat, f.Path)
		}
	}
	if len(flat) != len(files) {
		t.Fatalf("partition dropped files: expected %d, got %d", len(files), len(flat))
	}
	for i, f := range files {
		if flat[i] != f.Path {
			t.Errorf("position %d: expected %s, got %s", i, f.Path, flat[i])
		}
	}
}
