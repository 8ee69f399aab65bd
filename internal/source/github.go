package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/rework"
)

const (
	defaultGitHubAPIURL = "https://api.github.com"
	fetchConcurrency    = 8 // max simultaneous in-flight blob requests
	defaultCacheSize    = 128
)

// TreeEntry is one file in a repository listing.
type TreeEntry struct {
	Path string
	Size int64
}

// GitHubClient reads public (or token-visible) repositories over the REST
// API. Tree listings are cached per owner/repo@ref in a small LRU.
type GitHubClient struct {
	http    *http.Client
	token   string
	baseURL string
	cache   *lru.Cache[string, []TreeEntry]
	logger  *slog.Logger
}

// NewGitHubClient creates a GitHub API client. The token is optional; it
// raises the rate limit and grants access to private repositories.
func NewGitHubClient(cfg config.GitHubConfig, logger *slog.Logger) (*GitHubClient, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []TreeEntry](size)
	if err != nil {
		return nil, fmt.Errorf("init listing cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   cfg.Token,
		baseURL: defaultGitHubAPIURL,
		cache:   cache,
		logger:  logger,
	}, nil
}

// ResolveRef returns the ref to read from: the given one, or the
// repository's default branch when none was specified.
func (c *GitHubClient) ResolveRef(ctx context.Context, ref RepoRef) (string, error) {
	if ref.Ref != "" {
		return ref.Ref, nil
	}

	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	path := fmt.Sprintf("/repos/%s/%s", ref.Owner, ref.Repo)
	if err := c.getJSON(ctx, path, &repo); err != nil {
		return "", fmt.Errorf("resolve default branch: %w", err)
	}
	if repo.DefaultBranch == "" {
		return "", fmt.Errorf("repository %s has no default branch", ref)
	}
	return repo.DefaultBranch, nil
}

// ListTree returns every blob in the repository tree at the ref,
// recursively. Results are cached; a repeated listing for the same
// owner/repo@ref does not hit the API again.
func (c *GitHubClient) ListTree(ctx context.Context, ref RepoRef) ([]TreeEntry, error) {
	if ref.Ref == "" {
		resolved, err := c.ResolveRef(ctx, ref)
		if err != nil {
			return nil, err
		}
		ref.Ref = resolved
	}

	key := ref.String()
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			Size int64  `json:"size"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", ref.Owner, ref.Repo, url.PathEscape(ref.Ref))
	if err := c.getJSON(ctx, path, &tree); err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}

	if tree.Truncated {
		c.logger.Warn("repository tree truncated by API",
			slog.String("repo", key))
	}

	entries := make([]TreeEntry, 0, len(tree.Tree))
	for _, t := range tree.Tree {
		if t.Type != "blob" {
			continue
		}
		entries = append(entries, TreeEntry{Path: t.Path, Size: t.Size})
	}

	c.cache.Add(key, entries)
	return entries, nil
}

// FetchFiles downloads the given blobs, up to fetchConcurrency at a time.
// Results come back in the order of paths; each goroutine writes its own
// pre-allocated slot.
func (c *GitHubClient) FetchFiles(ctx context.Context, ref RepoRef, paths []string) ([]rework.SourceFile, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if ref.Ref == "" {
		resolved, err := c.ResolveRef(ctx, ref)
		if err != nil {
			return nil, err
		}
		ref.Ref = resolved
	}

	files := make([]rework.SourceFile, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)

	for i, p := range paths {
		i, p := i, p
		eg.Go(func() error {
			content, err := c.fetchRaw(egCtx, ref, p)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", p, err)
			}
			files[i] = rework.SourceFile{Path: p, Content: content}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *GitHubClient) fetchRaw(ctx context.Context, ref RepoRef, path string) (string, error) {
	escaped := (&url.URL{Path: path}).EscapedPath()
	reqPath := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		ref.Owner, ref.Repo, escaped, url.QueryEscape(ref.Ref))

	req, err := c.newRequest(ctx, reqPath)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

func (c *GitHubClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, path)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}

func (c *GitHubClient) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}
