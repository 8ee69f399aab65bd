package handler

import (
	"regexp"

	"github.com/reforge-labs/reforge/internal/source"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

// Slugs are lowercase, 3-63 chars, dash-separated, and appear in URLs and
// archive filenames.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

func validateSlug(slug string) *apierr.Error {
	if slug == "" {
		return apierr.SlugRequired()
	}
	if !slugRegex.MatchString(slug) {
		return apierr.SlugInvalid()
	}
	return nil
}

func validateName(name string) *apierr.Error {
	if name == "" {
		return apierr.NameRequired()
	}
	if len(name) > 255 {
		return apierr.NameTooLong()
	}
	return nil
}

var validSourceTypes = map[string]bool{
	"github": true,
	"git":    true,
	"upload": true,
	"s3":     true,
}

func validateSourceType(st string) *apierr.Error {
	if !validSourceTypes[st] {
		return apierr.InvalidSourceType()
	}
	return nil
}

// validateSourceURI checks the URI against the rules of its source type.
// Upload sources carry an object key instead of a URI and are created
// through the upload endpoint, not here.
func validateSourceURI(sourceType, uri string) *apierr.Error {
	switch sourceType {
	case "github":
		if _, err := source.ParseGitHubURL(uri); err != nil {
			return apierr.InvalidSourceURI(err.Error())
		}
	case "git":
		if uri == "" {
			return apierr.InvalidSourceURI("git sources require a clone URL")
		}
	case "s3":
		if uri == "" {
			return apierr.InvalidSourceURI("s3 sources require an object prefix")
		}
	case "upload":
		return apierr.InvalidSourceURI("upload sources are created via the upload endpoint")
	}
	return nil
}
