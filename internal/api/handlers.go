package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oswin/keepmd/internal/apperr"
	"github.com/oswin/keepmd/internal/filter"
	"github.com/oswin/keepmd/internal/index"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/keeper"
	"github.com/oswin/keepmd/internal/render"
	"github.com/oswin/keepmd/internal/sse"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers over the keeper and its collaborators.
type Handler struct {
	keeper   *keeper.Keeper
	idx      index.ItemIndex
	renderer *render.Renderer
	broker   *sse.Broker
}

// NewHandler creates a new Handler. idx and broker may be nil (tests).
func NewHandler(k *keeper.Keeper, idx index.ItemIndex, r *render.Renderer, broker *sse.Broker) *Handler {
	return &Handler{keeper: k, idx: idx, renderer: r, broker: broker}
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrAlreadyExists), errors.Is(err, apperr.ErrDuplicateURL):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrPending):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// syncUpsert keeps the search index and SSE clients in step after a mutation.
func (h *Handler) syncUpsert(kind string, it *item.Item) {
	if h.idx != nil {
		if err := h.idx.UpsertItem(it); err != nil {
			slog.Warn("index sync failed", slog.String("id", it.ID), slog.String("error", err.Error()))
		}
	}
	if h.broker != nil {
		h.broker.PublishItemEvent(kind, it.ID)
	}
}

func (h *Handler) syncDelete(view, id string) {
	if h.idx != nil {
		if err := h.idx.DeleteItem(view, id); err != nil {
			slog.Warn("index sync failed", slog.String("id", id), slog.String("error", err.Error()))
		}
	}
	if h.broker != nil {
		h.broker.PublishItemEvent("deleted", id)
	}
}

// ListItems handles GET /items with optional tag, type, and q filters.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	state := filter.State{
		Tags:  q["tag"],
		Query: q.Get("q"),
	}
	if t := q.Get("type"); t != "" {
		if !item.KnownType(t) {
			writeError(w, http.StatusBadRequest, "unknown type: "+t)
			return
		}
		state.Type = item.Type(t)
	}

	items := h.keeper.Filtered(state)
	writeJSON(w, http.StatusOK, ItemListResponse{
		View:  string(h.keeper.View()),
		Items: itemDTOs(items),
		Total: len(items),
	})
}

// GetItem handles GET /items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, ok := h.keeper.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, itemDTO(it))
}

// RenderItem handles GET /items/{id}/html.
func (h *Handler) RenderItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, ok := h.keeper.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	html, err := h.renderer.Render(it.Body())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{ID: id, HTML: html})
}

// AddNote handles POST /items/note.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.keeper.AddNote(r.Context(), req.Title, req.Content, req.Tags)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncUpsert("created", it)
	writeJSON(w, http.StatusCreated, itemDTO(it))
}

// AddLink handles POST /items/link.
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req AddLinkRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.keeper.AddLink(r.Context(), req.URL, req.Tags)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncUpsert("created", it)
	writeJSON(w, http.StatusCreated, itemDTO(it))
}

// EditNote handles PUT /items/{id}/note.
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditNoteRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.keeper.EditNote(r.Context(), id, req.Title, req.Content, req.Tags)
	if err != nil {
		writeErr(w, err)
		return
	}
	if it.ID != id {
		h.syncDelete(string(it.View), id)
	}
	h.syncUpsert("updated", it)
	writeJSON(w, http.StatusOK, itemDTO(it))
}

// EditLink handles PUT /items/{id}/link.
func (h *Handler) EditLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditLinkRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.keeper.EditLink(r.Context(), id, keeper.LinkFields{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Image:       req.Image,
		Tags:        req.Tags,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncUpsert("updated", it)
	writeJSON(w, http.StatusOK, itemDTO(it))
}

// ToggleTask handles POST /items/{id}/tasks.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ToggleTaskRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.keeper.ToggleTask(r.Context(), id, req.Index, req.Checked)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncUpsert("updated", it)
	writeJSON(w, http.StatusOK, itemDTO(it))
}

// Archive handles POST /items/{id}/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.keeper.Archive(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncDelete(string(item.ViewActive), id)
	writeJSON(w, http.StatusOK, MoveResponse{ID: id, Atomic: res.Atomic})
}

// Trash handles POST /items/{id}/trash.
func (h *Handler) Trash(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.keeper.Trash(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncDelete(string(h.keeper.View()), id)
	writeJSON(w, http.StatusOK, MoveResponse{ID: id, Atomic: res.Atomic})
}

// Restore handles POST /items/{id}/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.keeper.Restore(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.syncDelete(string(h.keeper.View()), id)
	writeJSON(w, http.StatusOK, MoveResponse{ID: id, Atomic: res.Atomic})
}

// DeleteItem handles DELETE /items/{id} (permanent, trash only).
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.keeper.DeleteForever(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishItemEvent("deleted", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// EmptyTrash handles POST /trash/empty.
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.keeper.EmptyTrash(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EmptyTrashResponse{Deleted: deleted})
}

// GetView handles GET /view.
func (h *Handler) GetView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SwitchViewRequest{View: string(h.keeper.View())})
}

// SwitchView handles PUT /view: loads the requested view from disk.
func (h *Handler) SwitchView(w http.ResponseWriter, r *http.Request) {
	var req SwitchViewRequest
	if !decode(w, r, &req) {
		return
	}
	view := item.View(req.View)
	if !view.Valid() {
		writeError(w, http.StatusBadRequest, "unknown view: "+req.View)
		return
	}
	if _, err := h.keeper.Load(r.Context(), view); err != nil {
		writeErr(w, err)
		return
	}
	if h.idx != nil {
		if err := h.idx.ReplaceView(string(view), h.keeper.Items()); err != nil {
			slog.Warn("index sync failed", slog.String("view", string(view)), slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, ItemListResponse{
		View:  string(view),
		Items: itemDTOs(h.keeper.Items()),
		Total: len(h.keeper.Items()),
	})
}

// Tags handles GET /tags.
func (h *Handler) Tags(w http.ResponseWriter, _ *http.Request) {
	facets := h.keeper.TagFacets()
	if facets == nil {
		facets = []filter.Facet{}
	}
	writeJSON(w, http.StatusOK, FacetsResponse{Facets: facets})
}

// Types handles GET /types.
func (h *Handler) Types(w http.ResponseWriter, _ *http.Request) {
	facets := h.keeper.TypeFacets()
	if facets == nil {
		facets = []filter.Facet{}
	}
	writeJSON(w, http.StatusOK, FacetsResponse{Facets: facets})
}

// Search handles GET /search via the SQLite index.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeError(w, http.StatusServiceUnavailable, "search index disabled")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
