package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/oswin/keepmd/internal/index"
	"github.com/oswin/keepmd/internal/keeper"
	"github.com/oswin/keepmd/internal/render"
	"github.com/oswin/keepmd/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// idx may be nil when the search index is disabled; broker, if non-nil,
// is mounted at GET /events inside the auth group.
func NewRouter(k *keeper.Keeper, idx index.ItemIndex, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(k, idx, render.New(), broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Items.
	r.Get("/items", h.ListItems)
	r.Get("/items/{id}", h.GetItem)
	r.Get("/items/{id}/html", h.RenderItem)
	r.Post("/items/note", h.AddNote)
	r.Post("/items/link", h.AddLink)
	r.Put("/items/{id}/note", h.EditNote)
	r.Put("/items/{id}/link", h.EditLink)
	r.Post("/items/{id}/tasks", h.ToggleTask)
	r.Delete("/items/{id}", h.DeleteItem)

	// Lifecycle moves.
	r.Post("/items/{id}/archive", h.Archive)
	r.Post("/items/{id}/trash", h.Trash)
	r.Post("/items/{id}/restore", h.Restore)
	r.Post("/trash/empty", h.EmptyTrash)

	// View selection.
	r.Get("/view", h.GetView)
	r.Put("/view", h.SwitchView)

	// Facets and search.
	r.Get("/tags", h.Tags)
	r.Get("/types", h.Types)
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
