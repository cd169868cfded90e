package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// NormalizeURL standardizes a URL to avoid duplicates.
// It lowercases the scheme and host, removes default ports, and sorts query parameters.
// It also removes fragments.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""

	q := u.Query()
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Origin returns scheme://host of u.
func Origin(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

// ResolveAgainstOrigin resolves a possibly relative href against the origin
// of base. Absolute hrefs are returned unchanged.
func ResolveAgainstOrigin(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("parse href %q: %w", href, err)
	}
	if ref.IsAbs() || base == nil {
		return ref, nil
	}
	return Origin(base).ResolveReference(ref), nil
}

// WithOffset returns a copy of u whose integer query parameter key is
// increased by step, and whose pagesize parameter is set to step. A missing
// key counts as zero.
func WithOffset(u *url.URL, key string, step int) *url.URL {
	next := *u
	q := next.Query()
	current, err := strconv.Atoi(q.Get(key))
	if err != nil {
		current = 0
	}
	q.Set(key, strconv.Itoa(current+step))
	q.Set("pagesize", strconv.Itoa(step))
	next.RawQuery = q.Encode()
	return &next
}
