package filter

import (
	"testing"
	"time"

	"github.com/oswin/keepmd/internal/item"
)

func activeItem(id, raw string) *item.Item {
	return item.New(id, raw, time.Now(), item.ViewActive)
}

func ids(items []*item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestApply_EmptyStatePassesEverything(t *testing.T) {
	items := []*item.Item{
		activeItem("a", "---\ntype: note\n---\nbody"),
		activeItem("b", "---\ntype: link\nurl: https://example.com\n---\n"),
	}
	got := Apply(items, State{})
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestApply_TagsAreANDed(t *testing.T) {
	items := []*item.Item{
		activeItem("both", "---\ntype: note\ntags: go, web\n---\n"),
		activeItem("one", "---\ntype: note\ntags: go\n---\n"),
		activeItem("none", "---\ntype: note\n---\n"),
	}
	got := Apply(items, State{Tags: []string{"go", "web"}})
	if len(got) != 1 || got[0].ID != "both" {
		t.Errorf("Apply = %v, want [both]", ids(got))
	}
}

func TestApply_TypeMatchesClassifiedType(t *testing.T) {
	items := []*item.Item{
		// Stored type says link, but without a url it classifies as note.
		activeItem("mislabeled", "---\ntype: link\n---\n"),
		activeItem("real", "---\ntype: link\nurl: https://example.com\n---\n"),
	}
	got := Apply(items, State{Type: item.TypeLink})
	if len(got) != 1 || got[0].ID != "real" {
		t.Errorf("Apply = %v, want [real]", ids(got))
	}
}

func TestApply_QueryScopedPerKind(t *testing.T) {
	items := []*item.Item{
		activeItem("note", "---\ntype: note\n---\nthe gopher lives here"),
		activeItem("link", "---\ntype: link\nurl: https://example.com\ndescription: gopher habitat\n---\n"),
		activeItem("other", "---\ntype: note\n---\nnothing relevant"),
	}
	got := Apply(items, State{Query: "GOPHER"})
	if len(got) != 2 {
		t.Fatalf("Apply = %v, want note and link", ids(got))
	}
}

func TestApply_PreservesOrder(t *testing.T) {
	items := []*item.Item{
		activeItem("z", "---\ntype: note\ntags: x\n---\n"),
		activeItem("a", "---\ntype: note\ntags: x\n---\n"),
	}
	got := Apply(items, State{Tags: []string{"x"}})
	if len(got) != 2 || got[0].ID != "z" || got[1].ID != "a" {
		t.Errorf("Apply = %v, must keep input order", ids(got))
	}
}

func TestTags_CountsAndSorts(t *testing.T) {
	items := []*item.Item{
		activeItem("a", "---\ntype: note\ntags: zebra, apple\n---\n"),
		activeItem("b", "---\ntype: note\ntags: apple\n---\n"),
	}
	got := Tags(items)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "apple" || got[0].Count != 2 {
		t.Errorf("got[0] = %+v, want apple/2", got[0])
	}
	if got[1].Name != "zebra" || got[1].Count != 1 {
		t.Errorf("got[1] = %+v, want zebra/1", got[1])
	}
}

func TestTags_CountsDuplicateTokens(t *testing.T) {
	items := []*item.Item{
		activeItem("a", "---\ntype: note\ntags: go, go\n---\n"),
	}
	got := Tags(items)
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("Tags = %+v, want go counted twice", got)
	}
}

func TestTypes_FixedOrderOmitsZero(t *testing.T) {
	items := []*item.Item{
		activeItem("i", "---\ntype: image\nurl: https://example.com/a.png\n---\n"),
		activeItem("n1", "---\ntype: note\n---\n"),
		activeItem("n2", "---\ntype: Note \n---\n"),
		activeItem("junk", "---\ntype: banana\n---\n"),
	}
	got := Types(items)
	if len(got) != 2 {
		t.Fatalf("Types = %+v, want note and image only", got)
	}
	if got[0].Name != "note" || got[0].Count != 2 {
		t.Errorf("got[0] = %+v, want note/2 (value is trimmed and lowercased)", got[0])
	}
	if got[1].Name != "image" || got[1].Count != 1 {
		t.Errorf("got[1] = %+v, want image/1", got[1])
	}
}
