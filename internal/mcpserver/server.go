// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes keepmd tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oswin/keepmd/internal/filter"
	"github.com/oswin/keepmd/internal/index"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/keeper"
)

// Server wraps the MCP server with keepmd tools.
type Server struct {
	mcp    *server.MCPServer
	keeper *keeper.Keeper
	idx    index.ItemIndex
}

// New creates a new MCP server with all keepmd tools registered.
// idx may be nil when the search index is disabled.
func New(k *keeper.Keeper, idx index.ItemIndex) *Server {
	s := &Server{keeper: k, idx: idx}

	s.mcp = server.NewMCPServer(
		"keepmd",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List items in the current view, optionally filtered by tags (comma-separated, AND) and type."),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; items must carry all of them")),
		mcp.WithString("type", mcp.Description("Item type: note, link, or image")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("read_item",
		mcp.WithDescription("Read the full Markdown text of one item, front matter included."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id (filename without .md)")),
	), s.readItem)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Full-text search through item titles, descriptions, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Create a new note. Body is plain Markdown without front matter; "+
			"keepmd adds the front matter block itself. Read the contract first via "+
			"the get_item_contract tool or the keepmd://item-format resource."),
		mcp.WithString("title", mcp.Description("Note title; a timestamp name is used when empty")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body of the note")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Save a URL as a link item. Page metadata (title, description, "+
			"preview image) is fetched automatically."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to save; https:// is assumed when the scheme is missing")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("get_item_contract",
		mcp.WithDescription("Returns the canonical keepmd item format contract. "+
			"Call this before creating or editing items to ensure correct structure."),
	), s.getItemContract)

	// Resource: item format contract.
	s.mcp.AddResource(
		mcp.NewResource("keepmd://item-format", "Item Format Contract",
			mcp.WithResourceDescription("Canonical Markdown item format that all items must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readItemFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type itemSummary struct {
	ID    string   `json:"id"`
	Type  string   `json:"type"`
	Title string   `json:"title,omitempty"`
	URL   string   `json:"url,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := filterState(req)
	items := s.keeper.Filtered(state)

	summaries := make([]itemSummary, len(items))
	for i, it := range items {
		summaries[i] = itemSummary{
			ID:    it.ID,
			Type:  string(it.Type()),
			Title: it.Title(),
			URL:   it.URL(),
			Tags:  it.Tags(),
		}
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, ok := s.keeper.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(it.RawText), nil
}

func (s *Server) searchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.idx == nil {
		// Fall back to the in-memory filter when no index is configured.
		items := s.keeper.Filtered(filter.State{Query: query})
		var ids []string
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := optionalString(req, "title")
	tags := item.SplitTags(optionalString(req, "tags"))

	it, err := s.keeper.AddNote(ctx, title, content, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.upsert(it)
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", it.ID)), nil
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := item.SplitTags(optionalString(req, "tags"))

	it, err := s.keeper.AddLink(ctx, url, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.upsert(it)
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", it.ID)), nil
}

func (s *Server) getItemContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ItemFormatContract), nil
}

func (s *Server) readItemFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "keepmd://item-format",
			MIMEType: "text/markdown",
			Text:     ItemFormatContract,
		},
	}, nil
}

func (s *Server) upsert(it *item.Item) {
	if s.idx == nil {
		return
	}
	_ = s.idx.UpsertItem(it)
}

func filterState(req mcp.CallToolRequest) filter.State {
	state := filter.State{
		Tags: item.SplitTags(optionalString(req, "tags")),
	}
	if t := optionalString(req, "type"); t != "" && item.KnownType(t) {
		state.Type = item.Type(t)
	}
	return state
}

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}
