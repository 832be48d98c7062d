// Package frontmatter implements the delimited metadata block used by keepmd
// files: a line of ---, one key: value pair per line, a closing --- line, then
// the Markdown body.
//
// The block is intentionally not YAML. Keys split on the first colon only, so
// colons inside values (URLs in particular) survive round trips, and lines
// without a colon are skipped rather than rejected. Hand-edited files must
// always load, so Parse never fails: when the delimiter pattern does not match
// the whole text is the body.
package frontmatter

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Delimiter is the line that opens and closes a front-matter block.
const Delimiter = "---"

// Metadata is an insertion-ordered mapping of front-matter keys to values.
// Serialize emits entries in the order they were set, which keeps repaired
// files diff-friendly against what the user wrote.
type Metadata = *orderedmap.OrderedMap[string, string]

// NewMetadata returns an empty metadata mapping.
func NewMetadata() Metadata {
	return orderedmap.New[string, string]()
}

// Get returns the value for key, or "" when absent.
func Get(m Metadata, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m.Get(key)
	return v
}

// Clone returns a copy of m preserving entry order.
func Clone(m Metadata) Metadata {
	out := NewMetadata()
	if m == nil {
		return out
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// Parse splits text into metadata and body.
//
// The block must sit at the very start of the text: "---\n", the key lines,
// then "\n---\n". Anything else means no front matter, in which case the
// metadata is empty and the body is the full text. The returned body is
// trimmed of surrounding whitespace.
func Parse(text string) (Metadata, string) {
	meta := NewMetadata()

	block, rest, ok := splitBlock(text)
	if !ok {
		return meta, text
	}

	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta.Set(key, strings.TrimSpace(value))
	}

	return meta, strings.TrimSpace(rest)
}

// SplitRaw is Parse without the body trim: the body is returned exactly as it
// appears after the closing delimiter, and hasBlock reports whether a block
// was present at all. The normalization repair pass uses this to rewrite the
// metadata while leaving the body bytes untouched.
func SplitRaw(text string) (meta Metadata, body string, hasBlock bool) {
	meta = NewMetadata()

	block, rest, ok := splitBlock(text)
	if !ok {
		return meta, text, false
	}

	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta.Set(key, strings.TrimSpace(value))
	}

	return meta, rest, true
}

func splitBlock(text string) (block, rest string, ok bool) {
	after, found := strings.CutPrefix(text, Delimiter+"\n")
	if !found {
		return "", "", false
	}
	idx := strings.Index(after, "\n"+Delimiter+"\n")
	if idx < 0 {
		return "", "", false
	}
	return after[:idx], after[idx+len("\n"+Delimiter+"\n"):], true
}

// Serialize builds the file text for meta and body. Entries are written in
// insertion order; keys with empty values are dropped. The delimiters are
// always emitted, even for empty metadata, so a serialized file is always
// recognized by Parse.
func Serialize(meta Metadata, body string) string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	if meta != nil {
		for pair := meta.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == "" {
				continue
			}
			b.WriteString(pair.Key)
			b.WriteString(": ")
			b.WriteString(pair.Value)
			b.WriteByte('\n')
		}
	}
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
