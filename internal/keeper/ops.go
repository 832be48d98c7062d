package keeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oswin/keepmd/internal/apperr"
	"github.com/oswin/keepmd/internal/frontmatter"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/linkmeta"
	"github.com/oswin/keepmd/internal/render"
	"github.com/oswin/keepmd/internal/title"
)

// AddNote creates a new note in the Active view. An empty name falls back to
// a timestamp title; the content must be non-empty. The new item is placed at
// the top of the collection.
func (k *Keeper) AddNote(_ context.Context, name, content string, tags []string) (*item.Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", apperr.ErrValidation)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.view != item.ViewActive {
		return nil, fmt.Errorf("%w: items can only be added in the active view", apperr.ErrValidation)
	}

	id := title.EnsureUnique(name, func(c string) bool { return k.idTaken(c, "") })

	meta := frontmatter.NewMetadata()
	meta.Set("type", string(item.TypeNote))
	if joined := item.JoinTags(tags); joined != "" {
		meta.Set("tags", joined)
	}
	text := frontmatter.Serialize(meta, content)

	if err := k.store.Write(item.ViewActive.Dir(), id+".md", text); err != nil {
		return nil, err
	}

	it := item.New(id, text, k.now(), item.ViewActive)
	k.prepend(it)
	k.log.Info("note added", slog.String("id", id))
	return it, nil
}

// AddLink fetches metadata for url and creates a link (or image) item in the
// Active view. A second call for a URL whose fetch-and-save is still in
// flight is dropped, and a URL already stored on any link-like item is
// rejected as a duplicate. Nothing is written when the fetch fails.
func (k *Keeper) AddLink(ctx context.Context, rawURL string, tags []string) (*item.Item, error) {
	url := linkmeta.WithHTTPProtocol(rawURL)
	if url == "" {
		return nil, fmt.Errorf("%w: not a valid http(s) url", apperr.ErrValidation)
	}

	k.mu.Lock()
	if k.view != item.ViewActive {
		k.mu.Unlock()
		return nil, fmt.Errorf("%w: items can only be added in the active view", apperr.ErrValidation)
	}
	if k.urlTaken(url) {
		k.mu.Unlock()
		return nil, apperr.ErrDuplicateURL
	}
	if _, inFlight := k.pending[url]; inFlight {
		k.mu.Unlock()
		return nil, apperr.ErrPending
	}
	k.pending[url] = struct{}{}
	k.mu.Unlock()

	defer func() {
		k.mu.Lock()
		delete(k.pending, url)
		k.mu.Unlock()
	}()

	// The fetch runs outside the lock; it can take up to the full timeout.
	// With no fetcher configured the link is saved from the URL alone.
	var meta linkmeta.Metadata
	if k.fetch != nil {
		m, err := k.fetch.Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch link metadata: %w", err)
		}
		meta = m
	}

	pageTitle := meta.Title
	if pageTitle == "" {
		pageTitle = linkmeta.ReadableTitleFromURL(url)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	id := title.EnsureUnique(pageTitle, func(c string) bool { return k.idTaken(c, "") })

	fm := frontmatter.NewMetadata()
	fm.Set("type", string(item.TypeFromURL(url)))
	fm.Set("title", pageTitle)
	fm.Set("url", url)
	fm.Set("description", strings.ReplaceAll(meta.Description, "\n", " "))
	fm.Set("image", meta.Image)
	if joined := item.JoinTags(tags); joined != "" {
		fm.Set("tags", joined)
	}
	text := frontmatter.Serialize(fm, "")

	if err := k.store.Write(item.ViewActive.Dir(), id+".md", text); err != nil {
		return nil, err
	}

	it := item.New(id, text, k.now(), item.ViewActive)
	k.prepend(it)
	k.log.Info("link added", slog.String("id", id), slog.String("url", url))
	return it, nil
}

// EditNote saves new content, title, and tags for a note. An empty new title
// keeps the current id. Editing forces the item back to a plain note: any
// url, image, or description keys are dropped. When neither the filename nor
// the serialized content changed, the save short-circuits without touching
// storage.
func (k *Keeper) EditNote(_ context.Context, id, newTitle, content string, tags []string) (*item.Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", apperr.ErrValidation)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	finalTitle := strings.TrimSpace(newTitle)
	if finalTitle == "" {
		finalTitle = it.ID
	}
	newID := title.Sanitize(finalTitle)
	if newID != it.ID && k.idTaken(newID, it.ID) {
		return nil, fmt.Errorf("%w: title %q", apperr.ErrAlreadyExists, newID)
	}

	meta := frontmatter.Clone(it.Meta())
	meta.Set("type", string(item.TypeNote))
	meta.Delete("url")
	meta.Delete("image")
	meta.Delete("description")
	if joined := item.JoinTags(tags); joined != "" {
		meta.Set("tags", joined)
	} else {
		meta.Delete("tags")
	}
	text := frontmatter.Serialize(meta, content)

	renamed := newID != it.ID
	changed := text != it.RawText
	if !renamed && !changed {
		return it, nil
	}

	dir := it.View.Dir()
	if renamed {
		if _, err := k.store.Move(dir, it.Filename(), dir, newID+".md"); err != nil {
			return nil, err
		}
	}
	if err := k.store.Write(dir, newID+".md", text); err != nil {
		if renamed {
			// Undo the rename so storage matches the untouched
			// in-memory state.
			if _, mvErr := k.store.Move(dir, newID+".md", dir, it.Filename()); mvErr != nil {
				k.log.Error("rename rollback failed",
					slog.String("id", it.ID), slog.String("error", mvErr.Error()))
			}
		}
		return nil, err
	}

	it.ID = newID
	it.SetRawText(text, k.now())
	k.log.Info("note saved", slog.String("id", newID))
	return it, nil
}

// LinkFields are the editable fields of a link item.
type LinkFields struct {
	Title       string
	URL         string
	Description string
	Image       string
	Tags        []string
}

// EditLink rebuilds a link item's front matter from the given fields. The
// type is re-derived from the URL, so pointing a link at an image address
// turns it into an image item. An unchanged result skips the storage write.
func (k *Keeper) EditLink(_ context.Context, id string, fields LinkFields) (*item.Item, error) {
	url := strings.TrimSpace(fields.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: url is empty", apperr.ErrValidation)
	}
	if !linkmeta.IsValidURL(url) {
		return nil, fmt.Errorf("%w: only http(s) urls are allowed", apperr.ErrValidation)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	fm := frontmatter.NewMetadata()
	fm.Set("type", string(item.TypeFromURL(url)))
	fm.Set("title", strings.TrimSpace(fields.Title))
	fm.Set("url", url)
	fm.Set("description", strings.ReplaceAll(strings.TrimSpace(fields.Description), "\n", " "))
	fm.Set("image", strings.TrimSpace(fields.Image))
	if joined := item.JoinTags(fields.Tags); joined != "" {
		fm.Set("tags", joined)
	}
	text := frontmatter.Serialize(fm, "")

	if text == it.RawText {
		return it, nil
	}

	if err := k.store.Write(it.View.Dir(), it.Filename(), text); err != nil {
		return nil, err
	}

	it.SetRawText(text, k.now())
	k.log.Info("link saved", slog.String("id", id))
	return it, nil
}

// ToggleTask flips the taskIndex-th task checkbox of an item's Markdown and
// persists the result. An index that does not resolve to a task line is a
// no-op.
func (k *Keeper) ToggleTask(_ context.Context, id string, taskIndex int, checked bool) (*item.Item, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	it, ok := k.find(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if it.View == item.ViewTrash {
		return nil, fmt.Errorf("%w: items in trash are read-only", apperr.ErrValidation)
	}

	text, toggled := render.ToggleTask(it.RawText, taskIndex, checked)
	if !toggled || text == it.RawText {
		return it, nil
	}

	if err := k.store.Write(it.View.Dir(), it.Filename(), text); err != nil {
		return nil, err
	}

	it.SetRawText(text, k.now())
	return it, nil
}

// urlTaken reports whether any link-like item already stores url.
// Call with mutex held.
func (k *Keeper) urlTaken(url string) bool {
	for _, it := range k.items {
		if item.IsLinkType(it.Type()) && it.URL() == url {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
