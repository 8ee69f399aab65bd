package source

import "testing"

func TestParseGitHubURL_Forms(t *testing.T) {
	cases := []struct {
		in    string
		owner string
		repo  string
		ref   string
	}{
		{"https://github.com/google/generative-ai-docs", "google", "generative-ai-docs", ""},
		{"https://github.com/owner/repo.git", "owner", "repo", ""},
		{"https://github.com/owner/repo/", "owner", "repo", ""},
		{"https://github.com/owner/repo@develop", "owner", "repo", "develop"},
		{"https://github.com/owner/repo/tree/release/v2", "owner", "repo", "release/v2"},
		{"http://github.com/owner/repo", "owner", "repo", ""},
		{"github.com/owner/repo", "owner", "repo", ""},
		{"owner/repo", "owner", "repo", ""},
		{"owner/repo@main", "owner", "repo", "main"},
	}

	for _, c := range cases {
		got, err := ParseGitHubURL(c.in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.in, err)
			continue
		}
		if got.Owner != c.owner || got.Repo != c.repo || got.Ref != c.ref {
			t.Errorf("%s: expected %s/%s@%s, got %s/%s@%s",
				c.in, c.owner, c.repo, c.ref, got.Owner, got.Repo, got.Ref)
		}
	}
}

func TestParseGitHubURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "https://github.com/onlyowner", "justoneword"} {
		if _, err := ParseGitHubURL(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestRepoRef_String(t *testing.T) {
	if got := (RepoRef{Owner: "a", Repo: "b"}).String(); got != "a/b" {
		t.Errorf("expected a/b, got %s", got)
	}
	if got := (RepoRef{Owner: "a", Repo: "b", Ref: "dev"}).String(); got != "a/b@dev" {
		t.Errorf("expected a/b@dev, got %s", got)
	}
}

func TestParseGitURL(t *testing.T) {
	url, branch := ParseGitURL("https://gitlab.com/group/repo@develop")
	if url != "https://gitlab.com/group/repo" || branch != "develop" {
		t.Errorf("got %s / %s", url, branch)
	}

	url, branch = ParseGitURL("https://gitlab.com/group/repo")
	if url != "https://gitlab.com/group/repo" || branch != "" {
		t.Errorf("got %s / %s", url, branch)
	}

	// SSH-style user prefix is not a branch separator.
	url, branch = ParseGitURL("git@github.com:owner/repo.git")
	if url != "git@github.com:owner/repo.git" || branch != "" {
		t.Errorf("got %s / %s", url, branch)
	}
}
