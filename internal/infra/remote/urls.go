package remote

import (
	"net/url"
	"strings"

	"toolgate/internal/domain"
)

// JoinURL joins a base URL and a path with exactly one slash at the seam.
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ExecutionPath substitutes the unqualified tool name into a path template.
// Templates without the placeholder are returned unchanged.
func ExecutionPath(template, originalName string) string {
	if !strings.Contains(template, domain.ToolPlaceholder) {
		return template
	}
	return strings.ReplaceAll(template, domain.ToolPlaceholder, url.PathEscape(originalName))
}
