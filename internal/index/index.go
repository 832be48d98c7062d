package index

import "github.com/oswin/keepmd/internal/item"

// ItemIndex defines the interface for search-index operations. Consumers
// depend on this interface rather than the concrete *DB type so tests can
// substitute mocks.
type ItemIndex interface {
	UpsertItem(it *item.Item) error
	DeleteItem(view, id string) error
	ReplaceView(view string, items []*item.Item) error
	Search(query string, limit int) ([]SearchResult, error)
	Count(view string) (int, error)
	Close() error
}

// Verify *DB satisfies ItemIndex at compile time.
var _ ItemIndex = (*DB)(nil)
