package storage

import (
	"net/http"
	"strings"

	"github.com/cinevault/cinevault-api/internal/constants"
)

// PublicURL joins a public base and a relative path.
func PublicURL(base, rel string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(strings.ReplaceAll(rel, `\`, "/"), "/")
}

// RelativePath returns the stored path of a URL previously built by PublicURL.
// URLs that do not start with "<base>/" are not local and report false.
func RelativePath(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(url, prefix)
	if rel == "" {
		return "", false
	}
	return rel, true
}

// BaseURL returns the configured public base or derives one from the request.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get(constants.HeaderXForwardedProto); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
