package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/source"
)

// SelectStage picks the representative file subset and loads its contents.
// Zero eligible files fails the run here, before any generation spend.
type SelectStage struct {
	github *source.GitHubClient
	cfg    config.SelectConfig
	logger *slog.Logger
}

func NewSelectStage(github *source.GitHubClient, cfg config.SelectConfig, logger *slog.Logger) *SelectStage {
	return &SelectStage{github: github, cfg: cfg, logger: logger}
}

func (s *SelectStage) Name() string { return StageSelect }

func (s *SelectStage) Execute(ctx context.Context, rc *RunContext) error {
	paths, err := source.Select(rc.Entries, s.cfg)
	if err != nil {
		return err
	}

	if rc.Ref != nil {
		rc.Files, err = s.github.FetchFiles(ctx, *rc.Ref, paths)
	} else {
		rc.Files, err = source.ReadFiles(rc.WorkDir, paths)
	}
	if err != nil {
		return fmt.Errorf("load selected files: %w", err)
	}

	s.logger.Info("files selected",
		slog.String("run_id", rc.RunID.String()),
		slog.Int("candidates", len(rc.Entries)),
		slog.Int("selected", len(rc.Files)))
	return nil
}
