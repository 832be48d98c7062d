package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/oswin/keepmd/internal/apperr"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return f, dir
}

func TestFS_WriteReadRoundTrip(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write("", "a.md", "hello"); err != nil {
		t.Fatal(err)
	}
	got, err := f.Read("", "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("Read = %q, want %q", got, "hello")
	}
}

func TestFS_WriteCreatesSubdir(t *testing.T) {
	f, root := newTestFS(t)
	if err := f.Write(".trash", "a.md", "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, ".trash", "a.md")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestFS_ListOnlyMarkdownNoRecursion(t *testing.T) {
	f, root := newTestFS(t)
	mustWriteFile(t, filepath.Join(root, "a.md"), "a")
	mustWriteFile(t, filepath.Join(root, "skip.txt"), "t")
	mustWriteFile(t, filepath.Join(root, "archive", "b.md"), "b")

	infos, err := f.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "a.md" {
		t.Errorf("List = %+v, want just a.md", infos)
	}
}

func TestFS_ListMissingDirIsNotFound(t *testing.T) {
	f, _ := newTestFS(t)
	_, err := f.List("archive")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("List err = %v, want ErrNotFound", err)
	}
}

func TestFS_ReadMissingIsNotFound(t *testing.T) {
	f, _ := newTestFS(t)
	_, err := f.Read("", "no.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Read err = %v, want ErrNotFound", err)
	}
}

func TestFS_DeleteMissingIsNotFound(t *testing.T) {
	f, _ := newTestFS(t)
	err := f.Delete("", "no.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestFS_MoveRenameIsAtomic(t *testing.T) {
	f, root := newTestFS(t)
	if err := f.Write("", "a.md", "content"); err != nil {
		t.Fatal(err)
	}
	res, err := f.Move("", "a.md", "archive", "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Atomic {
		t.Error("same-filesystem move must report Atomic")
	}
	if _, err := os.Stat(filepath.Join(root, "a.md")); !errors.Is(err, os.ErrNotExist) {
		t.Error("source still present after move")
	}
	got, err := f.Read("archive", "a.md")
	if err != nil || got != "content" {
		t.Errorf("moved file read = %q, %v", got, err)
	}
}

func TestFS_MoveRenames(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write(".trash", "a.md", "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Move(".trash", "a.md", "", "a-1.md"); err != nil {
		t.Fatal(err)
	}
	if got, err := f.Read("", "a-1.md"); err != nil || got != "x" {
		t.Errorf("Read after renaming move = %q, %v", got, err)
	}
}

func TestFS_MoveMissingIsNotFound(t *testing.T) {
	f, _ := newTestFS(t)
	_, err := f.Move("", "no.md", "archive", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Move err = %v, want ErrNotFound", err)
	}
}

func TestFS_TraversalRejected(t *testing.T) {
	f, _ := newTestFS(t)
	if _, err := f.Read("", "../escape.md"); err == nil {
		t.Error("traversal via name must fail")
	}
	if _, err := f.Read("..", "escape.md"); err == nil {
		t.Error("traversal via dir must fail")
	}
	if err := f.Write("", "/etc/passwd", "x"); err == nil {
		t.Error("absolute path must fail")
	}
}

func TestFS_WriteLeavesNoTempFiles(t *testing.T) {
	f, root := newTestFS(t)
	if err := f.Write("", "a.md", "x"); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a.md" {
			t.Errorf("unexpected leftover entry %q", e.Name())
		}
	}
}

func mustWriteFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}
