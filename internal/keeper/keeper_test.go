package keeper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oswin/keepmd/internal/apperr"
	"github.com/oswin/keepmd/internal/item"
	"github.com/oswin/keepmd/internal/linkmeta"
	"github.com/oswin/keepmd/internal/testutil"
)

// stubFetcher returns canned metadata without network traffic.
type stubFetcher struct {
	meta linkmeta.Metadata
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (linkmeta.Metadata, error) {
	return s.meta, s.err
}

func newTestKeeper(t *testing.T, fetch linkmeta.Fetcher) (*Keeper, string) {
	t.Helper()
	root, store := testutil.TestVault(t)
	k := New(store, fetch, nil)
	if _, err := k.Load(context.Background(), item.ViewActive); err != nil {
		t.Fatal(err)
	}
	return k, root
}

func TestLoad_MissingDirIsEmpty(t *testing.T) {
	_, store := testutil.TestVault(t)
	k := New(store, nil, nil)
	if _, err := k.Load(context.Background(), item.ViewArchive); err != nil {
		t.Fatal(err)
	}
	if len(k.Items()) != 0 {
		t.Errorf("Items = %d, want 0", len(k.Items()))
	}
	if k.View() != item.ViewArchive {
		t.Errorf("View = %v", k.View())
	}
}

func TestLoad_RepairsStaleTypes(t *testing.T) {
	root, store := testutil.TestVault(t)
	testutil.WriteFile(t, root, "", "Shot.md",
		"---\ntype: link\nurl: https://example.com/pic.png\n---\n")
	testutil.WriteFile(t, root, "", "Bare.md", "plain body, no front matter\n")

	k := New(store, nil, nil)
	repaired, err := k.Load(context.Background(), item.ViewActive)
	if err != nil {
		t.Fatal(err)
	}
	if len(repaired) != 2 {
		t.Fatalf("repaired = %v, want both files", repaired)
	}

	text, err := store.Read("", "Shot.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "type: image") {
		t.Errorf("rewritten file = %q, want type image", text)
	}

	// A second load must find nothing left to repair.
	repaired, err = k.Load(context.Background(), item.ViewActive)
	if err != nil {
		t.Fatal(err)
	}
	if len(repaired) != 0 {
		t.Errorf("second load repaired %v, want none", repaired)
	}
}

func TestLoad_SkipsRepairOutsideActive(t *testing.T) {
	root, store := testutil.TestVault(t)
	stale := "---\ntype: link\nurl: https://example.com/pic.png\n---\n"
	testutil.WriteFile(t, root, ".trash", "Shot.md", stale)

	k := New(store, nil, nil)
	repaired, err := k.Load(context.Background(), item.ViewTrash)
	if err != nil {
		t.Fatal(err)
	}
	if len(repaired) != 0 {
		t.Errorf("trash load repaired %v, want none", repaired)
	}
	if text, _ := store.Read(".trash", "Shot.md"); text != stale {
		t.Errorf("trash file rewritten: %q", text)
	}
}

func TestAddNote_WritesFileAndPrepends(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	if _, err := k.AddNote(context.Background(), "First", "one", nil); err != nil {
		t.Fatal(err)
	}
	it, err := k.AddNote(context.Background(), "My Note", "Hello world", []string{"go"})
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "My Note" {
		t.Errorf("ID = %q", it.ID)
	}
	if it.Type() != item.TypeNote {
		t.Errorf("Type = %v", it.Type())
	}
	items := k.Items()
	if items[0].ID != "My Note" {
		t.Errorf("new note must be first, got %q", items[0].ID)
	}
}

func TestAddNote_EmptyTitleGetsTimestamp(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	it, err := k.AddNote(context.Background(), "", "content", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(it.ID) != 14 {
		t.Errorf("ID = %q, want 14-digit timestamp", it.ID)
	}
}

func TestAddNote_EmptyContentRejected(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	_, err := k.AddNote(context.Background(), "t", "   ", nil)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestAddNote_DuplicateTitleSuffixed(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	if _, err := k.AddNote(context.Background(), "Foo", "a", nil); err != nil {
		t.Fatal(err)
	}
	it, err := k.AddNote(context.Background(), "Foo", "b", nil)
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "Foo-1" {
		t.Errorf("ID = %q, want Foo-1", it.ID)
	}
}

func TestAddLink_StoresFetchedMetadata(t *testing.T) {
	fetch := &stubFetcher{meta: linkmeta.Metadata{
		Title:       "Example Domain",
		Description: "For use\nin examples",
		Image:       "https://img.example/cover.png",
	}}
	k, _ := newTestKeeper(t, fetch)

	it, err := k.AddLink(context.Background(), "example.com", []string{"web"})
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "Example Domain" {
		t.Errorf("ID = %q", it.ID)
	}
	if it.URL() != "https://example.com" {
		t.Errorf("URL = %q, want https prefix added", it.URL())
	}
	if it.Type() != item.TypeLink {
		t.Errorf("Type = %v", it.Type())
	}
	if strings.Contains(it.RawText, "use\nin examples") {
		t.Error("description newlines must be flattened")
	}
	if it.Body() != "" {
		t.Errorf("link body = %q, want empty", it.Body())
	}
}

func TestAddLink_ImageURLClassified(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{})
	it, err := k.AddLink(context.Background(), "https://example.com/pic.webp", nil)
	if err != nil {
		t.Fatal(err)
	}
	if it.Type() != item.TypeImage {
		t.Errorf("Type = %v, want image", it.Type())
	}
}

func TestAddLink_TitleFallsBackToURL(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{})
	it, err := k.AddLink(context.Background(), "https://example.com/posts/my-long-read", nil)
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "my long read" {
		t.Errorf("ID = %q, want readable path title", it.ID)
	}
}

func TestAddLink_DuplicateURLRejected(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{meta: linkmeta.Metadata{Title: "Page"}})
	if _, err := k.AddLink(context.Background(), "https://example.com", nil); err != nil {
		t.Fatal(err)
	}
	_, err := k.AddLink(context.Background(), "https://example.com", nil)
	if !errors.Is(err, apperr.ErrDuplicateURL) {
		t.Errorf("err = %v, want ErrDuplicateURL", err)
	}
}

func TestAddLink_InvalidURLRejected(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{})
	_, err := k.AddLink(context.Background(), "   ", nil)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestAddLink_FetchFailureWritesNothing(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{err: errors.New("boom")})
	if _, err := k.AddLink(context.Background(), "https://example.com", nil); err == nil {
		t.Fatal("want error")
	}
	if len(k.Items()) != 0 {
		t.Errorf("failed fetch must not leave an item behind")
	}
	// The pending guard must have been released: a retry works.
	k.fetch = &stubFetcher{meta: linkmeta.Metadata{Title: "OK"}}
	if _, err := k.AddLink(context.Background(), "https://example.com", nil); err != nil {
		t.Errorf("retry after failed fetch: %v", err)
	}
}

// blockingFetcher parks Fetch until released, signalling when it is entered.
type blockingFetcher struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) Fetch(_ context.Context, _ string) (linkmeta.Metadata, error) {
	close(b.entered)
	<-b.release
	return linkmeta.Metadata{Title: "Slow Page"}, nil
}

func TestAddLink_SecondAddWhileFetchInFlightDropped(t *testing.T) {
	fetch := &blockingFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	k, _ := newTestKeeper(t, fetch)

	done := make(chan error, 1)
	go func() {
		_, err := k.AddLink(context.Background(), "https://example.com/slow", nil)
		done <- err
	}()
	<-fetch.entered

	// The first add is parked inside its fetch; a second add for the same
	// URL must be dropped without writing anything.
	if _, err := k.AddLink(context.Background(), "https://example.com/slow", nil); !errors.Is(err, apperr.ErrPending) {
		t.Fatalf("err = %v, want ErrPending", err)
	}
	if got := len(k.Items()); got != 0 {
		t.Fatalf("Items = %d before the fetch finished, want 0", got)
	}

	close(fetch.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got := len(k.Items()); got != 1 {
		t.Errorf("Items = %d, want exactly 1", got)
	}
}

func TestEditNote_RenameAndRewrite(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	if _, err := k.AddNote(context.Background(), "Old", "body", []string{"a"}); err != nil {
		t.Fatal(err)
	}

	it, err := k.EditNote(context.Background(), "Old", "New Title", "new body", []string{"b"})
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "New Title" {
		t.Errorf("ID = %q", it.ID)
	}
	if _, ok := k.Get("Old"); ok {
		t.Error("old id still resolvable")
	}
	if text, err := k.store.Read("", "New Title.md"); err != nil || !strings.Contains(text, "new body") {
		t.Errorf("renamed file read = %q, %v", text, err)
	}
	if _, err := k.store.Read("", "Old.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("old file still on disk")
	}
}

func TestEditNote_TitleCollisionRejected(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	ctx := context.Background()
	if _, err := k.AddNote(ctx, "A", "x", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := k.AddNote(ctx, "B", "y", nil); err != nil {
		t.Fatal(err)
	}
	_, err := k.EditNote(ctx, "B", "A", "y", nil)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestEditNote_NoopSkipsStorage(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	ctx := context.Background()
	it, err := k.AddNote(ctx, "Same", "body", []string{"t"})
	if err != nil {
		t.Fatal(err)
	}
	before := it.CreatedAt

	got, err := k.EditNote(ctx, "Same", "Same", "body", []string{"t"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(before) {
		t.Error("no-op edit must not restamp the item")
	}
}

func TestEditNote_StripsLinkFields(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{meta: linkmeta.Metadata{Title: "Page", Description: "d", Image: "i"}})
	ctx := context.Background()
	if _, err := k.AddLink(ctx, "https://example.com", nil); err != nil {
		t.Fatal(err)
	}

	it, err := k.EditNote(ctx, "Page", "", "now a note", nil)
	if err != nil {
		t.Fatal(err)
	}
	if it.Type() != item.TypeNote {
		t.Errorf("Type = %v, want note", it.Type())
	}
	if it.URL() != "" {
		t.Errorf("url survived the note edit: %q", it.URL())
	}
	if strings.Contains(it.RawText, "description") || strings.Contains(it.RawText, "image") {
		t.Errorf("link fields survived: %q", it.RawText)
	}
}

func TestEditLink_RederivesType(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{meta: linkmeta.Metadata{Title: "Page"}})
	ctx := context.Background()
	if _, err := k.AddLink(ctx, "https://example.com/post", nil); err != nil {
		t.Fatal(err)
	}

	it, err := k.EditLink(ctx, "Page", LinkFields{
		Title: "Page",
		URL:   "https://example.com/photo.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if it.Type() != item.TypeImage {
		t.Errorf("Type = %v, want image after url change", it.Type())
	}
}

func TestEditLink_InvalidURLRejected(t *testing.T) {
	k, _ := newTestKeeper(t, &stubFetcher{meta: linkmeta.Metadata{Title: "Page"}})
	ctx := context.Background()
	if _, err := k.AddLink(ctx, "https://example.com", nil); err != nil {
		t.Fatal(err)
	}
	_, err := k.EditLink(ctx, "Page", LinkFields{URL: "not-a-url"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestToggleTask_Persists(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	ctx := context.Background()
	if _, err := k.AddNote(ctx, "Tasks", "- [ ] one\n- [ ] two", nil); err != nil {
		t.Fatal(err)
	}

	it, err := k.ToggleTask(ctx, "Tasks", 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(it.RawText, "- [x] two") {
		t.Errorf("RawText = %q", it.RawText)
	}
	text, err := k.store.Read("", "Tasks.md")
	if err != nil || !strings.Contains(text, "- [x] two") {
		t.Errorf("file = %q, %v", text, err)
	}
}

func TestGet_UnknownID(t *testing.T) {
	k, _ := newTestKeeper(t, nil)
	if _, ok := k.Get("nope"); ok {
		t.Error("Get must miss on unknown id")
	}
}
