package frontmatter

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := &Meta{
		ID:       "11111111-2222-3333-4444-555555555555",
		Title:    "Morning thoughts",
		Created:  created,
		Modified: created.Add(time.Hour),
		Project:  "work",
		Type:     "idea",
		Tags:     []string{"go", "planning"},
	}

	data, err := Encode(in, "Morning thoughts\n\nSome body text.")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, body, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.ID != in.ID {
		t.Errorf("id = %q, want %q", out.ID, in.ID)
	}
	if out.Title != in.Title {
		t.Errorf("title = %q, want %q", out.Title, in.Title)
	}
	if !out.Created.Equal(in.Created) {
		t.Errorf("created = %v, want %v", out.Created, in.Created)
	}
	if !out.Modified.Equal(in.Modified) {
		t.Errorf("modified = %v, want %v", out.Modified, in.Modified)
	}
	if out.Project != "work" || out.Type != "idea" {
		t.Errorf("project/type = %q/%q", out.Project, out.Type)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "go" {
		t.Errorf("tags = %v", out.Tags)
	}
	if !strings.HasPrefix(body, "Morning thoughts") {
		t.Errorf("body = %q", body)
	}
}

func TestParseMissingID(t *testing.T) {
	data := []byte("---\ntitle: No identity\n---\n\nBody.\n")
	_, _, err := Parse(data)
	if err != ErrMissingID {
		t.Fatalf("err = %v, want ErrMissingID", err)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	_, _, err := Parse([]byte("Just a plain markdown file.\n"))
	if err != ErrNoFrontmatter {
		t.Fatalf("err = %v, want ErrNoFrontmatter", err)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	_, _, err := Parse([]byte("---\nid: abc\ntitle: Never closed\n"))
	if err != ErrNoFrontmatter {
		t.Fatalf("err = %v, want ErrNoFrontmatter", err)
	}
}

func TestParseDefaults(t *testing.T) {
	data := []byte("---\nid: abc-123\n---\n\nBody.\n")
	m, _, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", m.Title)
	}
	if m.Project != "default" {
		t.Errorf("project = %q, want default", m.Project)
	}
	if m.Type != "note" {
		t.Errorf("type = %q, want note", m.Type)
	}
	if m.Tags == nil || len(m.Tags) != 0 {
		t.Errorf("tags = %v, want empty", m.Tags)
	}
}

func TestExtraFieldsPassThrough(t *testing.T) {
	data := []byte("---\nid: abc\ntitle: X\nuser: sam@example.com\nmood: great\n---\n\nBody.\n")
	m, body, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Extra["user"] != "sam@example.com" {
		t.Errorf("extra user = %v", m.Extra["user"])
	}

	// Re-encode and make sure the unknown fields survive.
	out, err := Encode(m, body)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	m2, _, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse round-trip: %v", err)
	}
	if m2.Extra["mood"] != "great" {
		t.Errorf("extra mood lost: %v", m2.Extra)
	}
}

func TestEncodeEndsWithNewline(t *testing.T) {
	data, err := Encode(&Meta{ID: "x"}, "no trailing newline")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("encoded file should end with newline")
	}
}
