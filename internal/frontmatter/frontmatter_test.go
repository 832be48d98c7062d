package frontmatter

import (
	"testing"
)

func TestParse_BlockAndBody(t *testing.T) {
	meta, body := Parse("---\ntype: note\ntags: go, reading\n---\n# Hello\nBody text.\n")
	if got := Get(meta, "type"); got != "note" {
		t.Errorf("type = %q, want %q", got, "note")
	}
	if got := Get(meta, "tags"); got != "go, reading" {
		t.Errorf("tags = %q, want %q", got, "go, reading")
	}
	if body != "# Hello\nBody text." {
		t.Errorf("body = %q", body)
	}
}

func TestParse_ColonInValue(t *testing.T) {
	meta, _ := Parse("---\nurl: https://example.com:8080/page\n---\n")
	if got := Get(meta, "url"); got != "https://example.com:8080/page" {
		t.Errorf("url = %q, colon in value must survive", got)
	}
}

func TestParse_LineWithoutColonSkipped(t *testing.T) {
	meta, body := Parse("---\njust some words\ntitle: Kept\n---\nBody")
	if got := Get(meta, "title"); got != "Kept" {
		t.Errorf("title = %q, want %q", got, "Kept")
	}
	if meta.Len() != 1 {
		t.Errorf("meta.Len() = %d, want 1", meta.Len())
	}
	if body != "Body" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoBlock(t *testing.T) {
	meta, body := Parse("# Just a heading\nSome text.")
	if meta.Len() != 0 {
		t.Errorf("expected empty metadata, got %d entries", meta.Len())
	}
	if body != "# Just a heading\nSome text." {
		t.Errorf("body = %q", body)
	}
}

func TestParse_UnterminatedBlock(t *testing.T) {
	text := "---\ntitle: Half open\nno closing fence"
	meta, body := Parse(text)
	if meta.Len() != 0 {
		t.Errorf("expected empty metadata for unterminated block")
	}
	if body != text {
		t.Errorf("body = %q, want full text", body)
	}
}

func TestParse_BlockNotAtStart(t *testing.T) {
	text := "\n---\ntitle: Late\n---\nBody"
	meta, _ := Parse(text)
	if meta.Len() != 0 {
		t.Errorf("block after a leading newline must not count as front matter")
	}
}

func TestSerialize_OrderAndEmptyValues(t *testing.T) {
	meta := NewMetadata()
	meta.Set("type", "link")
	meta.Set("title", "Example")
	meta.Set("description", "")
	meta.Set("url", "https://example.com")

	got := Serialize(meta, "")
	want := "---\ntype: link\ntitle: Example\nurl: https://example.com\n---\n"
	if got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestSerialize_EmptyMetadataStillDelimited(t *testing.T) {
	got := Serialize(NewMetadata(), "body")
	if got != "---\n---\nbody" {
		t.Errorf("Serialize = %q", got)
	}
	meta, body := Parse(got)
	if meta.Len() != 0 || body != "body" {
		t.Errorf("round trip: meta.Len()=%d body=%q", meta.Len(), body)
	}
}

func TestSplitRaw_PreservesBodyBytes(t *testing.T) {
	text := "---\ntype: note\n---\n\n  indented body  \n"
	meta, body, hasBlock := SplitRaw(text)
	if !hasBlock {
		t.Fatal("hasBlock = false, want true")
	}
	if Get(meta, "type") != "note" {
		t.Errorf("type = %q", Get(meta, "type"))
	}
	if body != "\n  indented body  \n" {
		t.Errorf("body = %q, must keep surrounding whitespace", body)
	}
}

func TestClone_Independent(t *testing.T) {
	orig := NewMetadata()
	orig.Set("a", "1")
	cp := Clone(orig)
	cp.Set("a", "2")
	if Get(orig, "a") != "1" {
		t.Errorf("clone mutation leaked into original")
	}
}
