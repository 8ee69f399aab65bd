package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reforge-labs/reforge/internal/source"
	"github.com/reforge-labs/reforge/internal/source/connectors"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// FetchStage materializes the run's source and lists candidate files. GitHub
// sources are listed through the REST API without a local checkout; git,
// upload and s3 sources land in a per-run temp directory that the pipeline
// removes when the run ends.
type FetchStage struct {
	store   *store.Store
	github  *source.GitHubClient
	gitConn *connectors.GitConnector
	zipConn *connectors.ZipConnector
	s3Conn  *connectors.S3Connector
}

func NewFetchStage(s *store.Store, github *source.GitHubClient, gitConn *connectors.GitConnector, zipConn *connectors.ZipConnector, s3Conn *connectors.S3Connector) *FetchStage {
	return &FetchStage{store: s, github: github, gitConn: gitConn, zipConn: zipConn, s3Conn: s3Conn}
}

func (s *FetchStage) Name() string { return StageFetch }

func (s *FetchStage) Execute(ctx context.Context, rc *RunContext) error {
	src, err := s.store.GetSource(ctx, rc.SourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}
	rc.SourceType = src.Type

	if src.Type == postgres.SourceTypeGitHub {
		ref, err := source.ParseGitHubURL(src.URI)
		if err != nil {
			return fmt.Errorf("parse github url: %w", err)
		}
		entries, err := s.github.ListTree(ctx, ref)
		if err != nil {
			return fmt.Errorf("list github tree: %w", err)
		}
		rc.Ref = &ref
		rc.Entries = entries
		return nil
	}

	workDir := filepath.Join(os.TempDir(), "reforge-work", rc.RunID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	rc.WorkDir = workDir

	switch src.Type {
	case postgres.SourceTypeGit:
		cloneURL, branch := source.ParseGitURL(src.URI)
		if err := s.gitConn.Clone(ctx, cloneURL, branch, workDir); err != nil {
			return fmt.Errorf("git clone: %w", err)
		}

	case postgres.SourceTypeUpload:
		if s.zipConn == nil {
			return fmt.Errorf("object storage not configured")
		}
		if !src.ObjectKey.Valid || src.ObjectKey.String == "" {
			return fmt.Errorf("upload source missing object key")
		}
		if err := s.zipConn.Extract(ctx, src.ObjectKey.String, workDir); err != nil {
			return fmt.Errorf("extract zip: %w", err)
		}

	case postgres.SourceTypeS3:
		if s.s3Conn == nil {
			return fmt.Errorf("s3 connector not configured")
		}
		if err := s.s3Conn.Sync(ctx, src.URI, workDir); err != nil {
			return fmt.Errorf("s3 sync: %w", err)
		}

	default:
		return fmt.Errorf("unsupported source type: %s", src.Type)
	}

	entries, err := source.ListDir(workDir)
	if err != nil {
		return fmt.Errorf("list work dir: %w", err)
	}
	rc.Entries = entries
	return nil
}
