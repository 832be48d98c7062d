package item

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/oswin/keepmd/internal/frontmatter"
)

// Type is the logical kind of an item.
type Type string

const (
	TypeNote  Type = "note"
	TypeLink  Type = "link"
	TypeImage Type = "image"
)

// TypeOrder is the fixed display priority for type facets.
var TypeOrder = []Type{TypeNote, TypeLink, TypeImage}

// KnownType reports whether s names a recognized type.
func KnownType(s string) bool {
	switch Type(s) {
	case TypeNote, TypeLink, TypeImage:
		return true
	}
	return false
}

// imageExts are the raster/vector extensions that make a URL an image item,
// matched against the URL path extension or an explicit format query param.
var imageExts = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {},
	"webp": {}, "avif": {}, "bmp": {}, "svg": {},
}

var pathExtRe = regexp.MustCompile(`\.([a-z0-9]+)$`)

// IsDirectImageURL reports whether raw points straight at an image file.
// Relative values never qualify: only absolute http(s) URLs are inspected.
func IsDirectImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	ext := ""
	if m := pathExtRe.FindStringSubmatch(strings.ToLower(u.Path)); m != nil {
		ext = m[1]
	}
	format := strings.ToLower(u.Query().Get("format"))

	_, byExt := imageExts[ext]
	_, byFormat := imageExts[format]
	return byExt || byFormat
}

// TypeFromURL derives the link-like type for a URL: image when the URL shape
// says so, link otherwise.
func TypeFromURL(raw string) Type {
	if IsDirectImageURL(raw) {
		return TypeImage
	}
	return TypeLink
}

// IsLinkType reports whether t renders as a link-style card. Both link and
// image items do; only notes take the note-specific paths.
func IsLinkType(t Type) bool {
	return t == TypeLink || t == TypeImage
}

// Classify determines an item's type from its metadata. A url always wins:
// the stored type may not claim link or image without a consistent url, and
// with a url present the type is re-derived from the URL shape. Without one
// the item is a note regardless of what the type field says.
func Classify(meta frontmatter.Metadata) Type {
	if u := frontmatter.Get(meta, "url"); u != "" {
		return TypeFromURL(u)
	}
	return TypeNote
}

// Normalize recomputes the type field of raw from its url (forcing note when
// there is none) and reports whether the text changed. Files that already
// carry the correct type come back byte-identical; files without any front
// matter gain a block. The body bytes are never touched. Running Normalize on
// its own output is a no-op.
func Normalize(raw string) (string, bool) {
	meta, body, hasBlock := frontmatter.SplitRaw(raw)

	next := frontmatter.Clone(meta)
	next.Set("type", string(Classify(meta)))

	if hasBlock && frontmatter.Get(meta, "type") == frontmatter.Get(next, "type") {
		return raw, false
	}

	return frontmatter.Serialize(next, body), true
}
