package rework

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	fileMarkerOpen  = "--- FILE: %s ---"
	fileMarkerClose = "--- END FILE ---"
)

// BuildPrompt assembles one generation request: the shared review context,
// the batch's files delimited by path markers, and the instruction that the
// response must be a JSON object whose single "files" key maps each path to
// the complete new content.
func BuildPrompt(reviewContext, category string, files []SourceFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are reworking the %q area of a software project.\n\n", category)

	if strings.TrimSpace(reviewContext) != "" {
		b.WriteString("Project review:\n")
		b.WriteString(strings.TrimSpace(reviewContext))
		b.WriteString("\n\n")
	}

	b.WriteString("Rewrite every file below as an improved version: clearer structure, ")
	b.WriteString("consistent style, better naming, no change in observable behavior.\n\n")
	b.WriteString("Respond with a single JSON object of the form ")
	b.WriteString(`{"files": {"<path>": "<full new content>"}}`)
	b.WriteString(". Use the file paths exactly as given. Do not add commentary outside the JSON.\n")
	b.WriteString(FileBlocks(files))

	return b.String()
}

// FileBlocks renders files in the prompt's path-marker format. The review
// prompt uses the same framing so the model sees one convention throughout.
func FileBlocks(files []SourceFile) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString("\n")
		fmt.Fprintf(&b, fileMarkerOpen, f.Path)
		b.WriteString("\n")
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(fileMarkerClose)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseResponse extracts the generated files from a raw model response. A
// markdown code fence around the JSON is tolerated and stripped. Anything
// that is not a JSON object with a non-empty "files" object is a
// *MalformedResponseError.
func ParseResponse(raw string) (GeneratedFileSet, error) {
	text := StripFences(strings.TrimSpace(raw))

	var payload struct {
		Files map[string]string `json:"files"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &MalformedResponseError{Reason: "response is not valid JSON", Err: err}
	}
	if payload.Files == nil {
		return nil, &MalformedResponseError{Reason: `response has no "files" object`}
	}
	if len(payload.Files) == 0 {
		return nil, &MalformedResponseError{Reason: `"files" object is empty`}
	}
	return GeneratedFileSet(payload.Files), nil
}

// StripFences removes a leading/trailing markdown code fence, with or
// without a json language tag. Models add these despite instructions.
func StripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
