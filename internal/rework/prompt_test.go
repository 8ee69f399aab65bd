package rework

import (
	"errors"
	"strings"
	"testing"
)

// --- BuildPrompt ---

func TestBuildPrompt_ContainsFiles(t *testing.T) {
	files := []SourceFile{
		{Path: "src/main.ts", Content: "console.log(1)"},
		{Path: "src/util.ts", Content: "export const x = 2"},
	}
	prompt := BuildPrompt("", "core", files)

	for _, f := range files {
		if !strings.Contains(prompt, f.Path) {
			t.Errorf("prompt missing path %s", f.Path)
		}
		if !strings.Contains(prompt, f.Content) {
			t.Errorf("prompt missing content of %s", f.Path)
		}
	}
	if !strings.Contains(prompt, "core") {
		t.Error("prompt missing category name")
	}
}

func TestBuildPrompt_IncludesReviewContext(t *testing.T) {
	prompt := BuildPrompt("the error handling is inconsistent", "core", []SourceFile{{Path: "a.go", Content: "x"}})
	if !strings.Contains(prompt, "the error handling is inconsistent") {
		t.Error("prompt should embed the review context")
	}
}

func TestBuildPrompt_OmitsEmptyReviewContext(t *testing.T) {
	prompt := BuildPrompt("", "core", []SourceFile{{Path: "a.go", Content: "x"}})
	if strings.Contains(prompt, "Project review:") {
		t.Error("empty review context should not add a review section")
	}
}

func TestBuildPrompt_AsksForFilesJSON(t *testing.T) {
	prompt := BuildPrompt("", "core", []SourceFile{{Path: "a.go", Content: "x"}})
	if !strings.Contains(prompt, `"files"`) {
		t.Error("prompt should describe the expected files JSON shape")
	}
}

// --- ParseResponse ---

func TestParseResponse_Valid(t *testing.T) {
	set, err := ParseResponse(`{"files": {"a.go": "package main", "b.go": "package util"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 files, got %d", len(set))
	}
	if set["a.go"] != "package main" {
		t.Errorf("unexpected content for a.go: %q", set["a.go"])
	}
}

func TestParseResponse_StripsFences(t *testing.T) {
	raw := "```json\n{\"files\": {\"a.go\": \"x\"}}\n```"
	set, err := ParseResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if set["a.go"] != "x" {
		t.Errorf("fenced response should parse, got %v", set)
	}
}

func TestParseResponse_StripsBareFences(t *testing.T) {
	raw := "```\n{\"files\": {\"a.go\": \"x\"}}\n```"
	set, err := ParseResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if set["a.go"] != "x" {
		t.Errorf("bare-fenced response should parse, got %v", set)
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := ParseResponse("sure, here are the files you asked for")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedResponseError, got %T", err)
	}
}

func TestParseResponse_MissingFilesKey(t *testing.T) {
	_, err := ParseResponse(`{"result": "done"}`)
	if err == nil {
		t.Fatal("expected error when files key is absent")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedResponseError, got %T", err)
	}
}

func TestParseResponse_EmptyFiles(t *testing.T) {
	_, err := ParseResponse(`{"files": {}}`)
	if err == nil {
		t.Fatal("expected error for empty files object")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedResponseError, got %T", err)
	}
}

func TestParseResponse_ExtraKeysIgnored(t *testing.T) {
	set, err := ParseResponse(`{"files": {"a.go": "x"}, "notes": "rewrote everything"}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 {
		t.Errorf("extra top-level keys should be ignored, got %v", set)
	}
}
