package item

import (
	"strings"
	"testing"
	"time"
)

func TestItem_ParsedFields(t *testing.T) {
	raw := "---\ntype: link\ntitle: Example\nurl: https://example.com\ntags: go, web\n---\n"
	it := New("Example", raw, time.Now(), ViewActive)

	if it.Filename() != "Example.md" {
		t.Errorf("Filename = %q", it.Filename())
	}
	if it.Title() != "Example" {
		t.Errorf("Title = %q", it.Title())
	}
	if it.URL() != "https://example.com" {
		t.Errorf("URL = %q", it.URL())
	}
	tags := it.Tags()
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "web" {
		t.Errorf("Tags = %v, want [go web]", tags)
	}
}

func TestItem_SetRawTextInvalidatesCache(t *testing.T) {
	it := New("n", "---\ntitle: Before\n---\nbody", time.Now(), ViewActive)
	if it.Title() != "Before" {
		t.Fatalf("Title = %q", it.Title())
	}
	it.SetRawText("---\ntitle: After\n---\nbody", time.Now())
	if it.Title() != "After" {
		t.Errorf("Title after SetRawText = %q, want %q", it.Title(), "After")
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" go , , web,")
	if len(got) != 2 || got[0] != "go" || got[1] != "web" {
		t.Errorf("SplitTags = %v, want [go web]", got)
	}
	if SplitTags("") != nil {
		t.Errorf("SplitTags(\"\") must be nil")
	}
}

func TestJoinTags(t *testing.T) {
	if got := JoinTags([]string{" go ", "", "web"}); got != "go,web" {
		t.Errorf("JoinTags = %q, want %q", got, "go,web")
	}
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q, want empty", got)
	}
}

func TestSearchText_NoteUsesBody(t *testing.T) {
	it := New("My Note", "---\ntype: note\ntags: work\n---\nMeeting about ROADMAP", time.Now(), ViewActive)
	blob := it.SearchText()
	if !strings.Contains(blob, "roadmap") {
		t.Errorf("note search blob must contain lowercased body, got %q", blob)
	}
	if !strings.Contains(blob, "my note") {
		t.Errorf("note search blob must contain the id, got %q", blob)
	}
}

func TestSearchText_LinkUsesMetadataNotBody(t *testing.T) {
	raw := "---\ntype: link\ntitle: Some Page\nurl: https://example.com\ndescription: All about gophers\n---\nhidden body text"
	it := New("Some Page", raw, time.Now(), ViewActive)
	blob := it.SearchText()
	if !strings.Contains(blob, "gophers") {
		t.Errorf("link search blob must contain the description, got %q", blob)
	}
	if strings.Contains(blob, "hidden body") {
		t.Errorf("link search blob must not contain the body, got %q", blob)
	}
}

func TestView_Dir(t *testing.T) {
	if ViewActive.Dir() != "" {
		t.Errorf("active dir = %q, want empty", ViewActive.Dir())
	}
	if ViewArchive.Dir() != "archive" {
		t.Errorf("archive dir = %q", ViewArchive.Dir())
	}
	if ViewTrash.Dir() != ".trash" {
		t.Errorf("trash dir = %q", ViewTrash.Dir())
	}
}

func TestView_Valid(t *testing.T) {
	if !ViewActive.Valid() || !ViewArchive.Valid() || !ViewTrash.Valid() {
		t.Error("known views must be valid")
	}
	if View("bogus").Valid() {
		t.Error("unknown view must be invalid")
	}
}
