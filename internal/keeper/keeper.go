// Package keeper owns the in-memory item collection for the currently open
// view and every operation that mutates it. All state changes flow through
// one Keeper so the collection can never be half-updated: storage is written
// first, memory only after it succeeded.
package keeper

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oswin/keepmd/internal/filter"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/linkmeta"
	"github.com/oswin/keepmd/internal/storage"
)

// Keeper is the view store. One instance is owned by the running app; the
// mutex serializes operations the way the original single-threaded event
// loop did.
type Keeper struct {
	store storage.Provider
	fetch linkmeta.Fetcher
	log   *slog.Logger
	now   func() time.Time

	mu      sync.Mutex
	view    item.View
	items   []*item.Item
	pending map[string]struct{} // link URLs with a fetch-and-save in flight
}

// New creates a Keeper over the given storage and metadata fetcher.
func New(store storage.Provider, fetch linkmeta.Fetcher, log *slog.Logger) *Keeper {
	if log == nil {
		log = slog.Default()
	}
	return &Keeper{
		store:   store,
		fetch:   fetch,
		log:     log,
		now:     time.Now,
		view:    item.ViewActive,
		pending: make(map[string]struct{}),
	}
}

// Load reads every item file of the given view into memory, replacing the
// current collection. Items come back sorted by CreatedAt descending (newest
// first), using file modification times.
//
// Loading the Active view also runs the type repair pass: each file's type
// field is recomputed from its url and the file rewritten when they disagree,
// fixing entries written by older logic or by hand. The repaired ids are
// returned and logged. A missing archive or trash directory simply loads as
// empty.
func (k *Keeper) Load(ctx context.Context, view item.View) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	files, err := k.store.List(view.Dir())
	if err != nil {
		if isNotFound(err) {
			k.view = view
			k.items = nil
			return nil, nil
		}
		return nil, err
	}

	var loaded []*item.Item
	var repaired []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := k.store.Read(view.Dir(), f.Name)
		if err != nil {
			return nil, err
		}
		id := trimExt(f.Name)

		if view == item.ViewActive {
			if normalized, changed := item.Normalize(text); changed {
				if err := k.store.Write(view.Dir(), f.Name, normalized); err != nil {
					return nil, err
				}
				text = normalized
				repaired = append(repaired, id)
			}
		}

		loaded = append(loaded, item.New(id, text, f.ModTime, view))
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt.After(loaded[j].CreatedAt)
	})

	k.view = view
	k.items = loaded
	if len(repaired) > 0 {
		k.log.Info("repaired item types on load",
			slog.String("view", string(view)),
			slog.Int("count", len(repaired)),
			slog.Any("ids", repaired))
	}
	return repaired, nil
}

// View returns the currently loaded view.
func (k *Keeper) View() item.View {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.view
}

// Items returns the current collection in display order.
func (k *Keeper) Items() []*item.Item {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]*item.Item, len(k.items))
	copy(out, k.items)
	return out
}

// Get returns the item with the given id.
func (k *Keeper) Get(id string) (*item.Item, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.find(id)
}

// Filtered applies the filter state to the current collection, preserving
// order.
func (k *Keeper) Filtered(s filter.State) []*item.Item {
	return filter.Apply(k.Items(), s)
}

// TagFacets derives the tag facets for the current collection.
func (k *Keeper) TagFacets() []filter.Facet {
	return filter.Tags(k.Items())
}

// TypeFacets derives the type facets for the current collection.
func (k *Keeper) TypeFacets() []filter.Facet {
	return filter.Types(k.Items())
}

// find must be called with the mutex held.
func (k *Keeper) find(id string) (*item.Item, bool) {
	for _, it := range k.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// idTaken reports whether any item other than exclude already uses id.
// Comparison is exact (case- and content-sensitive). Call with mutex held.
func (k *Keeper) idTaken(id, exclude string) bool {
	for _, it := range k.items {
		if exclude != "" && it.ID == exclude {
			continue
		}
		if it.ID == id {
			return true
		}
	}
	return false
}

// prepend inserts a freshly created item at the top of the collection.
// Call with mutex held.
func (k *Keeper) prepend(it *item.Item) {
	k.items = append([]*item.Item{it}, k.items...)
}

// remove drops the item with the given id. Call with mutex held.
func (k *Keeper) remove(id string) {
	for i, it := range k.items {
		if it.ID == id {
			k.items = append(k.items[:i], k.items[i+1:]...)
			return
		}
	}
}

func trimExt(name string) string {
	if len(name) > 3 && name[len(name)-3:] == ".md" {
		return name[:len(name)-3]
	}
	return name
}
