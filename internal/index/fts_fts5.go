//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			view UNINDEXED,
			id UNINDEXED,
			title,
			description,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, r ItemRow) error {
	_, _ = tx.Exec(`DELETE FROM items_fts WHERE view = ? AND id = ?`, r.View, r.ID)
	_, err := tx.Exec(`INSERT INTO items_fts (view, id, title, description, body, tags) VALUES (?, ?, ?, ?, ?, ?)`,
		r.View, r.ID, r.Title, r.Desc, r.Body, strings.Join(r.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, view, id string) {
	_, _ = tx.Exec(`DELETE FROM items_fts WHERE view = ? AND id = ?`, view, id)
}

func ftsDeleteView(tx *sql.Tx, view string) {
	_, _ = tx.Exec(`DELETE FROM items_fts WHERE view = ?`, view)
}

// Search performs an FTS5 full-text search and returns matching results with
// snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.view,
		       f.id,
		       i.type,
		       snippet(items_fts, 4, '<b>', '</b>', '...', 64)
		FROM items_fts f
		JOIN items i ON i.view = f.view AND i.id = f.id
		WHERE items_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.View, &r.ID, &r.Type, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
