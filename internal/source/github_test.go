package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reforge-labs/reforge/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *GitHubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGitHubClient(config.GitHubConfig{Token: "ghp-test"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	client.baseURL = srv.URL
	return client
}

func TestGitHubClient_ResolveRef_DefaultBranch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer ghp-test" {
			t.Error("missing or wrong auth header")
		}
		w.Write([]byte(`{"default_branch": "trunk"}`))
	}))

	ref, err := client.ResolveRef(context.Background(), RepoRef{Owner: "owner", Repo: "repo"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "trunk" {
		t.Errorf("expected trunk, got %s", ref)
	}
}

func TestGitHubClient_ResolveRef_ExplicitSkipsAPI(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("explicit ref should not call the API")
	}))

	ref, err := client.ResolveRef(context.Background(), RepoRef{Owner: "o", Repo: "r", Ref: "v1.2"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "v1.2" {
		t.Errorf("expected v1.2, got %s", ref)
	}
}

func TestGitHubClient_ListTree_FiltersAndCaches(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/repos/owner/repo/git/trees/main" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"tree": [
			{"path": "src", "type": "tree"},
			{"path": "src/main.go", "type": "blob", "size": 120},
			{"path": "README.md", "type": "blob", "size": 40}
		], "truncated": false}`))
	}))

	ref := RepoRef{Owner: "owner", Repo: "repo", Ref: "main"}
	entries, err := client.ListTree(context.Background(), ref)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("tree entries should exclude directories, got %d", len(entries))
	}
	if entries[0].Path != "src/main.go" || entries[0].Size != 120 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}

	if _, err := client.ListTree(context.Background(), ref); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("second listing should come from cache, got %d API calls", calls)
	}
}

func TestGitHubClient_ListTree_APIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Not Found"}`))
	}))

	_, err := client.ListTree(context.Background(), RepoRef{Owner: "o", Repo: "gone", Ref: "main"})
	if err == nil {
		t.Fatal("expected error for missing repository")
	}
}

func TestGitHubClient_FetchFiles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github.raw+json" {
			t.Errorf("expected raw accept header, got %s", r.Header.Get("Accept"))
		}
		switch r.URL.Path {
		case "/repos/owner/repo/contents/a.go":
			w.Write([]byte("package a"))
		case "/repos/owner/repo/contents/dir/b.go":
			w.Write([]byte("package b"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ref := RepoRef{Owner: "owner", Repo: "repo", Ref: "main"}
	files, err := client.FetchFiles(context.Background(), ref, []string{"a.go", "dir/b.go"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "a.go" || files[0].Content != "package a" {
		t.Errorf("unexpected first file: %+v", files[0])
	}
	if files[1].Path != "dir/b.go" || files[1].Content != "package b" {
		t.Errorf("unexpected second file: %+v", files[1])
	}
}

func TestGitHubClient_FetchFiles_PropagatesFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))

	_, err := client.FetchFiles(context.Background(),
		RepoRef{Owner: "o", Repo: "r", Ref: "main"}, []string{"a.go"})
	if err == nil {
		t.Fatal("expected error when a blob fetch fails")
	}
}

func TestGitHubClient_FetchFiles_Empty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no paths should mean no API calls")
	}))

	files, err := client.FetchFiles(context.Background(),
		RepoRef{Owner: "o", Repo: "r", Ref: "main"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if files != nil {
		t.Errorf("expected nil for empty input, got %v", files)
	}
}
