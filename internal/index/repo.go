package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/oswin/keepmd/internal/frontmatter"
	"github.com/oswin/keepmd/internal/item"
)

// ItemRow represents a row in the items table.
type ItemRow struct {
	View      string
	ID        string
	Type      string
	Title     string
	URL       string
	Desc      string
	Tags      []string
	Body      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	View    string `json:"view"`
	ID      string `json:"id"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

// rowFor flattens an in-memory item into its index row.
func rowFor(it *item.Item) ItemRow {
	meta := it.Meta()
	return ItemRow{
		View:      string(it.View),
		ID:        it.ID,
		Type:      string(it.Type()),
		Title:     frontmatter.Get(meta, "title"),
		URL:       frontmatter.Get(meta, "url"),
		Desc:      frontmatter.Get(meta, "description"),
		Tags:      it.Tags(),
		Body:      it.Body(),
		UpdatedAt: it.CreatedAt,
	}
}

// UpsertItem inserts or replaces one item and its FTS entry in a transaction.
func (db *DB) UpsertItem(it *item.Item) error {
	if it.View == item.ViewTrash {
		return db.DeleteItem(string(it.View), it.ID)
	}
	r := rowFor(it)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO items (view, id, type, title, url, description, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(view, id) DO UPDATE SET
			type        = excluded.type,
			title       = excluded.title,
			url         = excluded.url,
			description = excluded.description,
			tags        = excluded.tags,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, r.View, r.ID, r.Type, r.Title, r.URL, r.Desc, strings.Join(r.Tags, ","), r.Body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert item: %w", err)
	}

	if err := ftsUpsert(tx, r); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteItem removes one item and its FTS entry.
func (db *DB) DeleteItem(view, id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, view, id)
	_, _ = tx.Exec(`DELETE FROM items WHERE view = ? AND id = ?`, view, id)

	return tx.Commit()
}

// ReplaceView atomically swaps the indexed rows of one view for the given
// items. Called after a view load so the index mirrors what is on disk.
func (db *DB) ReplaceView(view string, items []*item.Item) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteView(tx, view)
	if _, err := tx.Exec(`DELETE FROM items WHERE view = ?`, view); err != nil {
		return fmt.Errorf("index: clear view: %w", err)
	}

	if view == string(item.ViewTrash) {
		return tx.Commit()
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (view, id, type, title, url, description, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		r := rowFor(it)
		if _, err := stmt.Exec(r.View, r.ID, r.Type, r.Title, r.URL, r.Desc,
			strings.Join(r.Tags, ","), r.Body, r.UpdatedAt); err != nil {
			return fmt.Errorf("index: insert item: %w", err)
		}
		if err := ftsUpsert(tx, r); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed items in one view.
func (db *DB) Count(view string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM items WHERE view = ?`, view).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
