package property

import (
	"regexp"
	"strings"
)

var (
	slugSpaces   = regexp.MustCompile(`[\s_]+`)
	slugInvalid  = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slugify converts a display name into a URL-safe lowercase slug.
// Names that reduce to nothing fall back to "property".
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "property"
	}
	return slug
}
