package filter

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/oswin/keepmd/internal/frontmatter"
	"github.com/oswin/keepmd/internal/item"
)

// Facet is a tag or type name with the number of items carrying it.
type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Tags derives the tag facets for items, sorted by locale-aware collation of
// the tag name. Counting is per tag token: an item whose list names the same
// tag twice contributes two. That mirrors how vault files have always been
// counted, so existing sidebars keep their numbers.
func Tags(items []*item.Item) []Facet {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		for _, tag := range it.Tags() {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	coll := collate.New(language.Und)
	coll.SortStrings(order)

	out := make([]Facet, 0, len(order))
	for _, name := range order {
		out = append(out, Facet{Name: name, Count: counts[name]})
	}
	return out
}

// Types derives the type facets for items in the fixed note, link, image
// order. Types with zero count are omitted; values outside the recognized set
// are ignored entirely.
func Types(items []*item.Item) []Facet {
	counts := make(map[item.Type]int)
	for _, it := range items {
		raw := strings.ToLower(strings.TrimSpace(frontmatter.Get(it.Meta(), "type")))
		if !item.KnownType(raw) {
			continue
		}
		counts[item.Type(raw)]++
	}

	out := make([]Facet, 0, len(item.TypeOrder))
	for _, t := range item.TypeOrder {
		if counts[t] == 0 {
			continue
		}
		out = append(out, Facet{Name: string(t), Count: counts[t]})
	}
	return out
}
