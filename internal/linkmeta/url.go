// Package linkmeta fetches page metadata for link items and provides the URL
// helpers the add-link flow depends on.
package linkmeta

import (
	"net/url"
	"regexp"
	"strings"
)

// IsValidURL reports whether raw is an absolute http(s) URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// WithHTTPProtocol normalizes user input into an absolute http(s) URL,
// prefixing https:// when the bare value parses that way. Input that cannot
// be made into a valid URL comes back empty.
func WithHTTPProtocol(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if IsValidURL(value) {
		return value
	}
	prefixed := "https://" + value
	if IsValidURL(prefixed) {
		return prefixed
	}
	return ""
}

// ExtractDomain returns the hostname of a URL, or the input unchanged when it
// does not parse.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

var (
	// localeSegmentRe matches locale-looking path segments such as en or
	// en-US, which make poor titles.
	localeSegmentRe = regexp.MustCompile(`(?i)^[a-z]{2}(-[a-z]{2})?$`)
	separatorRe     = regexp.MustCompile(`[-_]+`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
)

// ReadableTitleFromURL derives a human title from the last meaningful path
// segment of a URL, turning dashes and underscores into spaces. It falls back
// to the domain when the path offers nothing usable.
func ReadableTitleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	var candidate string
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || localeSegmentRe.MatchString(seg) {
			continue
		}
		candidate = seg
	}
	if candidate == "" {
		return ExtractDomain(raw)
	}

	if decoded, err := url.PathUnescape(candidate); err == nil {
		candidate = decoded
	}
	t := separatorRe.ReplaceAllString(candidate, " ")
	t = spaceRunRe.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	if t == "" {
		return ExtractDomain(raw)
	}
	return t
}
