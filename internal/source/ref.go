// Package source fetches project files from their origin (GitHub, generic
// git, uploaded archives, S3 buckets) and selects the representative subset
// a rework run operates on.
package source

import (
	"fmt"
	"strings"
)

// RepoRef identifies a GitHub repository at an optional ref. An empty Ref
// means the repository's default branch.
type RepoRef struct {
	Owner string
	Repo  string
	Ref   string
}

func (r RepoRef) String() string {
	if r.Ref == "" {
		return r.Owner + "/" + r.Repo
	}
	return r.Owner + "/" + r.Repo + "@" + r.Ref
}

// ParseGitHubURL extracts owner, repo and ref from the URL forms users
// paste in:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo@branch
//	https://github.com/owner/repo/tree/branch
//	github.com/owner/repo
//	owner/repo
func ParseGitHubURL(raw string) (RepoRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return RepoRef{}, fmt.Errorf("empty repository URL")
	}

	// An @ counts as a ref separator only in the final path segment, so
	// git@github.com style prefixes stay intact.
	var ref string
	if at := strings.LastIndex(s, "@"); at > strings.LastIndex(s, "/") {
		ref = s[at+1:]
		s = s[:at]
	}

	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("cannot parse repository from %q", raw)
	}

	out := RepoRef{Owner: parts[0], Repo: parts[1], Ref: ref}

	// https://github.com/owner/repo/tree/branch form
	if len(parts) >= 4 && parts[2] == "tree" && out.Ref == "" {
		out.Ref = strings.Join(parts[3:], "/")
	}

	return out, nil
}

// ParseGitURL splits a generic git URL into clone URL and branch. The
// branch rides after an @ suffix; absent means the remote default.
func ParseGitURL(raw string) (cloneURL, branch string) {
	s := strings.TrimSpace(raw)
	if at := strings.LastIndex(s, "@"); at > strings.LastIndex(s, "/") {
		return s[:at], s[at+1:]
	}
	return s, ""
}
