package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oswin/keepmd/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves dir/name against the vault root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(dir, name string) (string, error) {
	rel := filepath.Join(dir, name)
	if rel == "" || rel == "." {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// List returns the .md files directly inside dir. Subdirectories (the archive
// and trash live under the active root) are not descended into.
func (f *FS) List(dir string) ([]FileInfo, error) {
	base, err := f.safePath(dir, "")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: list %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}

	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		out = append(out, FileInfo{Name: e.Name(), ModTime: info.ModTime()})
	}
	return out, nil
}

// Read returns the text of a vault file.
func (f *FS) Read(dir, name string) (string, error) {
	abs, err := f.safePath(dir, name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: read %s: %w", name, err)
	}
	return string(data), nil
}

// Write atomically writes text: tmp file → fsync → rename.
func (f *FS) Write(dir, name, text string) error {
	abs, err := f.safePath(dir, name)
	if err != nil {
		return err
	}
	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(parent, ".keepmd-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file from the vault.
func (f *FS) Delete(dir, name string) error {
	abs, err := f.safePath(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Move relocates a file between view directories, preferring an atomic rename
// and falling back to copy-then-delete when rename is not available (e.g.
// across filesystems). The fallback can leave a duplicate behind on a crash
// between the copy and the delete, which the MoveResult lets callers surface.
func (f *FS) Move(srcDir, name, dstDir, newName string) (MoveResult, error) {
	if newName == "" {
		newName = name
	}
	src, err := f.safePath(srcDir, name)
	if err != nil {
		return MoveResult{}, err
	}
	dst, err := f.safePath(dstDir, newName)
	if err != nil {
		return MoveResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return MoveResult{}, fmt.Errorf("storage: mkdir for move: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return MoveResult{Atomic: true}, nil
	} else if errors.Is(err, fs.ErrNotExist) {
		return MoveResult{}, fmt.Errorf("storage: move %s: %w", name, apperr.ErrNotFound)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return MoveResult{}, fmt.Errorf("storage: move read %s: %w", name, err)
	}
	if err := f.Write(dstDir, newName, string(data)); err != nil {
		return MoveResult{}, err
	}
	if err := os.Remove(src); err != nil {
		return MoveResult{}, fmt.Errorf("storage: move cleanup %s: %w", name, err)
	}
	return MoveResult{Atomic: false}, nil
}

// EnsureDir creates a view directory if it does not exist.
func (f *FS) EnsureDir(dir string) error {
	abs, err := f.safePath(dir, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: ensure dir %s: %w", dir, err)
	}
	return nil
}
