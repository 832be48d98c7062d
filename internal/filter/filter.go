// Package filter computes the visible subset of a view's items and the
// tag/type facets that populate filter UIs.
package filter

import (
	"strings"

	"github.com/oswin/keepmd/internal/item"
)

// State is the current filter selection. Zero value means "show everything".
type State struct {
	// Tags must all be present on an item for it to pass (AND semantics).
	Tags []string
	// Type, when non-empty, must equal the item's classified type exactly.
	Type item.Type
	// Query is matched case-insensitively as a substring of the item's
	// search blob.
	Query string
}

// Apply returns the items satisfying all three predicates, preserving the
// input order. It never mutates items or the filter state.
func Apply(items []*item.Item, s State) []*item.Item {
	out := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if matchesTags(it, s.Tags) && matchesType(it, s.Type) && matchesQuery(it, s.Query) {
			out = append(out, it)
		}
	}
	return out
}

func matchesTags(it *item.Item, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	itemTags := it.Tags()
	if len(itemTags) == 0 {
		return false
	}
	have := make(map[string]struct{}, len(itemTags))
	for _, t := range itemTags {
		have[t] = struct{}{}
	}
	for _, want := range selected {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}

func matchesType(it *item.Item, selected item.Type) bool {
	if selected == "" {
		return true
	}
	return it.Type() == selected
}

func matchesQuery(it *item.Item, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(it.SearchText(), strings.ToLower(query))
}
