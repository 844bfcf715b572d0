// Package detector classifies URLs with cheap substring heuristics.
package detector

import (
	"net/url"
	"strings"
)

// docIndicators mark a URL as likely official documentation.
var docIndicators = []string{"docs.", "developer.", "api.", "developers."}

// extendedDocIndicators are used by the standalone ranking tool.
var extendedDocIndicators = []string{
	"docs.", "developer.", "api.",
	"developers.", "documentation.",
	"/docs/", "/api/", "/developer/",
}

// IsDocumentationURL reports whether a URL is likely official documentation.
// The check is plain substring containment on the lower-cased input; there
// is no host/path anchoring and malformed URLs simply fail every check.
func IsDocumentationURL(rawURL string) bool {
	return containsAny(strings.ToLower(rawURL), docIndicators)
}

// IsDocumentationURLExtended is IsDocumentationURL with additional
// "documentation." and path-segment markers.
func IsDocumentationURLExtended(rawURL string) bool {
	return containsAny(strings.ToLower(rawURL), extendedDocIndicators)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Category determines a coarse site category from URL patterns:
// "docs/api", "blog" or "general".
func Category(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "general"
	}
	host := strings.ToLower(u.Host)
	path := strings.ToLower(u.Path)

	// Documentation/API
	if strings.Contains(host, "docs.") || strings.Contains(host, "documentation.") ||
		strings.Contains(path, "/docs/") || strings.Contains(path, "/documentation/") {
		return "docs/api"
	}
	if strings.Contains(host, "api.") || strings.Contains(host, "developer.") ||
		strings.Contains(host, "developers.") || strings.Contains(path, "/api/") {
		return "docs/api"
	}

	// Blog
	if strings.Contains(host, "blog.") || strings.Contains(path, "/blog/") {
		return "blog"
	}

	return "general"
}
