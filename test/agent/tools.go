//go:build integration

package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/reforge-labs/reforge/internal/mcp/tools"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
)

// buildToolsAndDispatch returns the OpenAI tool schemas and a dispatch map for the eval harness.
func buildToolsAndDispatch(s *store.Store, producer *pipeline.Producer, events *pipeline.EventLog, mc *minioclient.Client, logger *slog.Logger) ([]openaiTool, map[string]ToolFunc) {
	listProjects := tools.NewListProjectsHandler(s, logger)
	startRework := tools.NewStartReworkHandler(s, producer, logger)
	getRunStatus := tools.NewGetRunStatusHandler(s, events, logger)
	getReview := tools.NewGetReviewHandler(s, logger)
	getArchiveManifest := tools.NewGetArchiveManifestHandler(s, mc, logger)

	schemas := []openaiTool{
		{
			Type: "function",
			Function: toolFunction{
				Name:        "list_projects",
				Description: "List registered projects. Returns project slug, name, and description.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"limit": {
							"type": "integer",
							"description": "Maximum number of projects to return (default 50)"
						}
					}
				}`),
			},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        "start_rework",
				Description: "Start a rework run for a project. Fetches the project's source, reviews the selected files, and regenerates improved versions into a downloadable archive. Uses the project's latest source unless a source ID is given.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"project_slug": {
							"type": "string",
							"description": "Slug of the project to rework"
						},
						"source_id": {
							"type": "string",
							"description": "Optional source UUID; defaults to the project's latest source"
						}
					},
					"required": ["project_slug"]
				}`),
			},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        "get_run_status",
				Description: "Get the status of a rework run: lifecycle state, file counts, failed categories, and the most recent progress events.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"run_id": {
							"type": "string",
							"description": "UUID of the rework run"
						}
					},
					"required": ["run_id"]
				}`),
			},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        "get_review",
				Description: "Fetch the model's review of the files selected for a rework run. The review explains what the rework pass will improve.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"run_id": {
							"type": "string",
							"description": "UUID of the rework run"
						},
						"max_response_tokens": {
							"type": "integer",
							"description": "Token budget for the response (default 4000)"
						}
					},
					"required": ["run_id"]
				}`),
			},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        "get_archive_manifest",
				Description: "List the files inside a completed run's result archive without downloading it. Returns per-file paths and sizes.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"run_id": {
							"type": "string",
							"description": "UUID of the rework run"
						}
					},
					"required": ["run_id"]
				}`),
			},
		},
	}

	dispatch := map[string]ToolFunc{
		"list_projects": func(ctx context.Context, argsJSON json.RawMessage) (string, error) {
			var params tools.ListProjectsParams
			if err := json.Unmarshal(argsJSON, &params); err != nil {
				return "", err
			}
			return listProjects.Handle(ctx, params)
		},
		"start_rework": func(ctx context.Context, argsJSON json.RawMessage) (string, error) {
			var params tools.StartReworkParams
			if err := json.Unmarshal(argsJSON, &params); err != nil {
				return "", err
			}
			return startRework.Handle(ctx, params)
		},
		"get_run_status": func(ctx context.Context, argsJSON json.RawMessage) (string, error) {
			var params tools.GetRunStatusParams
			if err := json.Unmarshal(argsJSON, &params); err != nil {
				return "", err
			}
			return getRunStatus.Handle(ctx, params)
		},
		"get_review": func(ctx context.Context, argsJSON json.RawMessage) (string, error) {
			var params tools.GetReviewParams
			if err := json.Unmarshal(argsJSON, &params); err != nil {
				return "", err
			}
			return getReview.Handle(ctx, params)
		},
		"get_archive_manifest": func(ctx context.Context, argsJSON json.RawMessage) (string, error) {
			var params tools.GetArchiveManifestParams
			if err := json.Unmarshal(argsJSON, &params); err != nil {
				return "", err
			}
			return getArchiveManifest.Handle(ctx, params)
		},
	}

	return schemas, dispatch
}
