// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileInfo describes one Markdown file in a view directory.
type FileInfo struct {
	Name    string
	ModTime time.Time
}

// MoveResult reports how a move was carried out, so callers can assert on
// durability: a rename is atomic, the copy-then-delete fallback is not.
type MoveResult struct {
	Atomic bool
}

// Provider is the interface for vault file operations. Directories are named
// relative to the vault root ("" for the root itself); names are bare file
// names within one directory.
type Provider interface {
	// List returns every .md file directly inside dir, without recursing.
	// A dir that does not exist yet yields apperr.ErrNotFound.
	List(dir string) ([]FileInfo, error)
	// Read returns the text of dir/name.
	Read(dir, name string) (string, error)
	// Write atomically writes text to dir/name, creating dir if needed.
	Write(dir, name, text string) error
	// Delete removes dir/name.
	Delete(dir, name string) error
	// Move relocates srcDir/name to dstDir/newName (newName "" keeps the
	// name), creating dstDir if needed.
	Move(srcDir, name, dstDir, newName string) (MoveResult, error)
	// EnsureDir creates dir if it does not exist.
	EnsureDir(dir string) error
}
