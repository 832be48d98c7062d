// Package item defines the in-memory representation of one stored entry and
// the rules that classify it as a note, link, or image.
package item

import (
	"strings"
	"time"

	"github.com/oswin/keepmd/internal/frontmatter"
)

// View is one of the three logical partitions of the vault, each backed by a
// distinct directory.
type View string

const (
	ViewActive  View = "active"
	ViewArchive View = "archive"
	ViewTrash   View = "trash"
)

// Dir returns the storage directory backing the view, relative to the vault
// root. Active items live at the root itself.
func (v View) Dir() string {
	switch v {
	case ViewArchive:
		return "archive"
	case ViewTrash:
		return ".trash"
	default:
		return ""
	}
}

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	return v == ViewActive || v == ViewArchive || v == ViewTrash
}

// Item is one logical entry backed by exactly one file. ID is the file's base
// name without extension and doubles as the user-facing title for notes.
type Item struct {
	ID        string
	RawText   string
	CreatedAt time.Time
	View      View

	// Parsed-metadata cache, invalidated by identity check against the
	// text that produced it.
	parsed       frontmatter.Metadata
	parsedBody   string
	parsedSource string
	parsedSet    bool
}

// New creates an item for raw text loaded or written at t.
func New(id, raw string, t time.Time, view View) *Item {
	return &Item{ID: id, RawText: raw, CreatedAt: t, View: view}
}

// Filename returns the backing file name.
func (it *Item) Filename() string {
	return it.ID + ".md"
}

// Meta returns the parsed front-matter metadata, recomputing only when
// RawText has changed since the last parse.
func (it *Item) Meta() frontmatter.Metadata {
	it.ensureParsed()
	return it.parsed
}

// Body returns the trimmed text following the front-matter block, or the
// whole raw text when no block is present.
func (it *Item) Body() string {
	it.ensureParsed()
	return it.parsedBody
}

func (it *Item) ensureParsed() {
	if it.parsedSet && it.parsedSource == it.RawText {
		return
	}
	it.parsed, it.parsedBody = frontmatter.Parse(it.RawText)
	it.parsedSource = it.RawText
	it.parsedSet = true
}

// SetRawText replaces the stored text and stamps the item as freshly
// mutated. The parse cache invalidates itself on the next access.
func (it *Item) SetRawText(raw string, now time.Time) {
	it.RawText = raw
	it.CreatedAt = now
}

// Type returns the classified type of the item.
func (it *Item) Type() Type {
	return Classify(it.Meta())
}

// Title returns the stored title metadata, or "".
func (it *Item) Title() string {
	return frontmatter.Get(it.Meta(), "title")
}

// URL returns the stored url metadata, or "".
func (it *Item) URL() string {
	return frontmatter.Get(it.Meta(), "url")
}

// Tags returns the parsed tag list: the comma-joined tags value split and
// trimmed, empty entries dropped.
func (it *Item) Tags() []string {
	return SplitTags(frontmatter.Get(it.Meta(), "tags"))
}

// SplitTags parses a comma-joined tags value.
func SplitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags builds the serialized tags value from trimmed, non-empty names.
// An empty list yields "", which Serialize then omits entirely.
func JoinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ",")
}

// SearchText computes the lowercase blob the text filter matches against.
// Link-like items search across id, title, description, url, and tags; notes
// across id, body, and tags. Absent fields are skipped; present fields are
// newline-joined before lowercasing.
func (it *Item) SearchText() string {
	meta := it.Meta()
	tags := frontmatter.Get(meta, "tags")

	var fields []string
	if IsLinkType(it.Type()) {
		fields = []string{
			it.ID,
			frontmatter.Get(meta, "title"),
			frontmatter.Get(meta, "description"),
			frontmatter.Get(meta, "url"),
			tags,
		}
	} else {
		fields = []string{it.ID, it.Body(), tags}
	}

	kept := fields[:0]
	for _, f := range fields {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.ToLower(strings.Join(kept, "\n"))
}
