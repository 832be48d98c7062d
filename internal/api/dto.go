package api

import (
	"time"

	"github.com/oswin/keepmd/internal/filter"
	"github.com/oswin/keepmd/internal/frontmatter"
	"github.com/oswin/keepmd/internal/index"
	"github.com/oswin/keepmd/internal/item"
)

// ItemDTO is the wire representation of one item.
type ItemDTO struct {
	ID          string    `json:"id"`
	View        string    `json:"view"`
	Type        string    `json:"type"`
	Title       string    `json:"title,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func itemDTO(it *item.Item) ItemDTO {
	meta := it.Meta()
	tags := it.Tags()
	if tags == nil {
		tags = []string{}
	}
	return ItemDTO{
		ID:          it.ID,
		View:        string(it.View),
		Type:        string(it.Type()),
		Title:       frontmatter.Get(meta, "title"),
		URL:         frontmatter.Get(meta, "url"),
		Description: frontmatter.Get(meta, "description"),
		Image:       frontmatter.Get(meta, "image"),
		Tags:        tags,
		Body:        it.Body(),
		CreatedAt:   it.CreatedAt,
	}
}

func itemDTOs(items []*item.Item) []ItemDTO {
	out := make([]ItemDTO, len(items))
	for i, it := range items {
		out[i] = itemDTO(it)
	}
	return out
}

// ItemListResponse wraps a filtered item listing.
type ItemListResponse struct {
	View  string    `json:"view"`
	Items []ItemDTO `json:"items"`
	Total int       `json:"total"`
}

// AddNoteRequest is the request body for creating a note.
type AddNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// AddLinkRequest is the request body for creating a link item.
type AddLinkRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// EditNoteRequest is the request body for saving a note.
type EditNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// EditLinkRequest is the request body for saving a link item.
type EditLinkRequest struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

// ToggleTaskRequest flips one task-list checkbox of a note.
type ToggleTaskRequest struct {
	Index   int  `json:"index"`
	Checked bool `json:"checked"`
}

// SwitchViewRequest selects the view to load.
type SwitchViewRequest struct {
	View string `json:"view"`
}

// MoveResponse reports the outcome of an archive/trash/restore operation.
type MoveResponse struct {
	ID     string `json:"id"`
	Atomic bool   `json:"atomic"`
}

// FacetsResponse wraps tag or type facets.
type FacetsResponse struct {
	Facets []filter.Facet `json:"facets"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// RenderResponse carries an item's body rendered to sanitized HTML.
type RenderResponse struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// EmptyTrashResponse reports how many files were permanently removed.
type EmptyTrashResponse struct {
	Deleted int `json:"deleted"`
}
