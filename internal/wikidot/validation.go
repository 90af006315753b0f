package wikidot

import (
	"regexp"
	"strings"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
)

// MaxPageNameLength bounds page names and URLs accepted from callers
const MaxPageNameLength = 512

var (
	siteNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	tagRegex      = regexp.MustCompile(`^\S+$`)
)

// ValidatePageName validates a page name or absolute page URL.
func ValidatePageName(page string) error {
	if page == "" {
		return apierrors.NewValidationError("page", "", "page is required")
	}
	if len(page) > MaxPageNameLength {
		return apierrors.NewValidationError("page", "", "page name is too long")
	}
	if strings.ContainsAny(page, " \t\r\n") {
		return apierrors.NewValidationError("page", page, "page name cannot contain whitespace")
	}
	return nil
}

// ValidateSiteName validates a short site name such as "scp-wiki".
// Empty is allowed and means the client's own site.
func ValidateSiteName(site string) error {
	if site == "" {
		return nil
	}
	if !siteNameRegex.MatchString(site) {
		return apierrors.NewValidationError("site", site, "must be lowercase letters, digits and hyphens")
	}
	return nil
}

// ValidateTags validates tags for a saveTags call. Tags are sent space
// separated, so a tag may not contain whitespace.
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		if !tagRegex.MatchString(tag) {
			return apierrors.NewValidationError("tags", tag, "tags must be non-empty and contain no whitespace")
		}
	}
	return nil
}
