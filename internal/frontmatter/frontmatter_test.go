package frontmatter

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_HeaderAndBody(t *testing.T) {
	raw := []byte("+++\ntitle = \"Hello\"\n+++\n# Hello\nBody text.\n")
	meta, body, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title() != "Hello" {
		t.Errorf("title = %q, want %q", meta.Title(), "Hello")
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestDecode_NoHeader(t *testing.T) {
	raw := []byte("# Just a heading\nSome text.\n")
	meta, body, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta) != 0 {
		t.Errorf("expected empty meta, got %v", meta)
	}
	if body != string(raw) {
		t.Errorf("body = %q, want entire file", body)
	}
}

func TestDecode_Unterminated(t *testing.T) {
	raw := []byte("+++\ntitle = \"Oops\"\nno closing line\n")
	_, _, err := Decode(raw)
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
}

func TestDecode_DelimiterOnlyFirstLine(t *testing.T) {
	// A lone opening delimiter at EOF still declares intent.
	_, _, err := Decode([]byte("+++"))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
}

func TestDecode_InvalidTOML(t *testing.T) {
	raw := []byte("+++\ntitle = = broken\n+++\nbody\n")
	_, _, err := Decode(raw)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if !strings.Contains(pe.Block, "broken") {
		t.Errorf("ParseError.Block = %q, should name the offending block", pe.Block)
	}
}

func TestDecode_BodyLeadingNewlineKept(t *testing.T) {
	raw := []byte("+++\ntitle = \"x\"\n+++\n\nfirst body line\n")
	_, body, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "\nfirst body line\n" {
		t.Errorf("body = %q, leading newline must survive", body)
	}
}

func TestDecode_NearDelimiterLinesAreContent(t *testing.T) {
	// "++++" and " +++ " are not delimiter lines.
	raw := []byte("++++\nnot a header\n")
	meta, body, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta) != 0 || body != string(raw) {
		t.Errorf("meta = %v, body = %q", meta, body)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	meta := Meta{"title": "Second Brain", "created": "2022-03-01", "draft": true}
	body := "Some text.\n\nMore [text](other/note.md).\n"

	raw, err := Encode(meta, body)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, gotBody, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotBody != body {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
	if got.Title() != "Second Brain" {
		t.Errorf("title = %q", got.Title())
	}
	if got["created"] != "2022-03-01" {
		t.Errorf("created = %v, unknown keys must survive the round trip", got["created"])
	}
	if got["draft"] != true {
		t.Errorf("draft = %v", got["draft"])
	}
}

func TestEncode_EmptyMetaWritesNoHeader(t *testing.T) {
	raw, err := Encode(Meta{}, "plain body\n")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(raw) != "plain body\n" {
		t.Errorf("raw = %q, want body only", raw)
	}
}

func TestMeta_TitleAbsent(t *testing.T) {
	if got := (Meta{}).Title(); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
	// Non-string title is treated as absent rather than coerced.
	if got := (Meta{"title": 42}).Title(); got != "" {
		t.Errorf("Title() = %q, want empty for non-string", got)
	}
}
