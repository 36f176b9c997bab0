package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// Normalize canonicalizes a URL so the same page always maps to the same
// string: lowercased host, no fragment, no trailing slash, "/" for an empty
// path. Pagination dedupe relies on this.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	u.Fragment = ""
	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	return u.String(), nil
}

// Resolve turns href into an absolute URL against base. Returns "" for
// unusable links (mailto:, tel:, unparsable).
func Resolve(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	return u.String()
}

// SameHost reports whether host belongs to the same site as base,
// ignoring a leading "www.".
func SameHost(base *url.URL, host string) bool {
	if base == nil || host == "" {
		return false
	}
	return normalizeHost(base.Hostname()) == normalizeHost(host)
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	if clean != "/" && strings.HasSuffix(clean, "/") {
		clean = strings.TrimSuffix(clean, "/")
	}
	return clean
}
