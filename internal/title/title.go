// Package title turns human titles into safe, unique file ids.
package title

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxLen is the id length budget in runes. Filesystems commonly cap names at
// 255 bytes; 200 leaves headroom for the .md extension and -N suffixes.
const MaxLen = 200

var (
	illegalRe    = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Sanitize strips characters that are illegal on common filesystems,
// collapses whitespace runs to single spaces, trims the ends, and truncates
// to MaxLen. An input that sanitizes to nothing falls back to a
// timestamp-derived title from the local clock.
func Sanitize(name string) string {
	cleaned := illegalRe.ReplaceAllString(name, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		cleaned = Timestamp(time.Now())
	}

	return truncate(cleaned, MaxLen)
}

// Timestamp formats t as YYYYMMDDHHMMSS, the fallback title for empty input.
func Timestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// EnsureUnique appends -1, -2, ... to the sanitized base until exists reports
// the candidate free. Each attempt re-truncates the base so base+suffix stays
// within MaxLen. For a fixed set of taken ids the result is deterministic and
// uses the lowest free suffix.
func EnsureUnique(base string, exists func(id string) bool) string {
	sanitized := Sanitize(base)
	candidate := sanitized
	for n := 1; exists(candidate); n++ {
		suffix := "-" + strconv.Itoa(n)
		trimmed := truncate(sanitized, MaxLen-len(suffix))
		candidate = strings.TrimRight(trimmed, " ") + suffix
	}
	return candidate
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
