// Package tools implements the MCP tool handlers exposed by cmd/mcp.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolHandler is the interface every tool handler implements. Handle
// returns the markdown the model sees.
type ToolHandler[P any] interface {
	Handle(ctx context.Context, params P) (string, error)
}

// WrapHandler adapts a ToolHandler to the SDK's AddTool callback. A handler
// error becomes a tool-level error result, not a protocol failure.
func WrapHandler[P any](h ToolHandler[P]) func(context.Context, *sdkmcp.CallToolRequest, *P) (*sdkmcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params *P) (*sdkmcp.CallToolResult, any, error) {
		if params == nil {
			params = new(P)
		}
		text, err := h.Handle(ctx, *params)
		isErr := false
		if err != nil {
			text = err.Error()
			isErr = true
		}
		return &sdkmcp.CallToolResult{
			IsError: isErr,
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
		}, nil, nil
	}
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// WrapProjectError turns store errors from project lookups into messages
// fit for the model.
func WrapProjectError(err error) error {
	if notFound(err) {
		return fmt.Errorf("project not found")
	}
	return fmt.Errorf("get project: %w", err)
}

// WrapRunError turns store errors from run lookups into messages fit for
// the model.
func WrapRunError(err error) error {
	if notFound(err) {
		return fmt.Errorf("run not found")
	}
	return fmt.Errorf("get run: %w", err)
}
