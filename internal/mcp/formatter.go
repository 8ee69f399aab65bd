// Package mcp holds shared building blocks for the MCP tool handlers,
// chiefly the token-budgeted Markdown response builder.
package mcp

import (
	"fmt"
	"strings"
)

const defaultMaxTokens = 4000

// ResponseBuilder constructs token-budgeted Markdown responses for MCP tools.
// Token cost is estimated at four characters per token.
type ResponseBuilder struct {
	buf           strings.Builder
	tokenEstimate int
	maxTokens     int
	truncated     bool
	itemCount     int
}

// NewResponseBuilder creates a builder with the given token budget.
// If maxTokens <= 0, defaultMaxTokens is used.
func NewResponseBuilder(maxTokens int) *ResponseBuilder {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ResponseBuilder{maxTokens: maxTokens}
}

// AddHeader writes a header line to the response. Headers are never
// truncated; the budget applies to what follows.
func (rb *ResponseBuilder) AddHeader(text string) {
	line := text + "\n\n"
	rb.buf.WriteString(line)
	rb.tokenEstimate += len(line) / 4
}

// AddLine writes a single line to the response, returning false if budget exceeded.
func (rb *ResponseBuilder) AddLine(text string) bool {
	line := text + "\n"
	cost := len(line) / 4
	if rb.tokenEstimate+cost > rb.maxTokens {
		rb.truncated = true
		return false
	}
	rb.buf.WriteString(line)
	rb.tokenEstimate += cost
	rb.itemCount++
	return true
}

// AddSection writes a section with a heading.
func (rb *ResponseBuilder) AddSection(heading string, content string) bool {
	section := fmt.Sprintf("### %s\n%s\n\n", heading, content)
	cost := len(section) / 4
	if rb.tokenEstimate+cost > rb.maxTokens {
		rb.truncated = true
		return false
	}
	rb.buf.WriteString(section)
	rb.tokenEstimate += cost
	return true
}

// AddRawText writes raw text. When the text overflows the remaining budget
// it is cut at the last line boundary that fits and the builder is marked
// truncated.
func (rb *ResponseBuilder) AddRawText(text string) bool {
	cost := len(text) / 4
	if rb.tokenEstimate+cost <= rb.maxTokens {
		rb.buf.WriteString(text)
		rb.tokenEstimate += cost
		return true
	}

	remaining := (rb.maxTokens - rb.tokenEstimate) * 4
	if remaining > 0 {
		cut := text[:remaining]
		if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
			cut = cut[:nl+1]
		}
		rb.buf.WriteString(cut)
		rb.tokenEstimate += len(cut) / 4
	}
	rb.truncated = true
	return false
}

// Finalize appends a truncation notice when needed and returns the response.
func (rb *ResponseBuilder) Finalize(totalCount, returnedCount int) string {
	if rb.truncated || returnedCount < totalCount {
		rb.buf.WriteString(fmt.Sprintf(
			"\n---\n*Showing %d of %d results (truncated to ~%d tokens).*\n",
			returnedCount, totalCount, rb.maxTokens))
	}
	return rb.buf.String()
}

// TokenEstimate returns the current estimated token count.
func (rb *ResponseBuilder) TokenEstimate() int {
	return rb.tokenEstimate
}

// IsTruncated returns whether the response was truncated.
func (rb *ResponseBuilder) IsTruncated() bool {
	return rb.truncated
}

// ItemCount returns the number of lines added through AddLine.
func (rb *ResponseBuilder) ItemCount() int {
	return rb.itemCount
}
