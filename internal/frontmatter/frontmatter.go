// Package frontmatter encodes and decodes the YAML metadata block that
// prefixes every note file. Decoding enforces an explicit schema: a note
// without an id is rejected rather than passed through as an untyped map.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// ErrNoFrontmatter is returned when a file has no leading YAML block.
var ErrNoFrontmatter = errors.New("frontmatter: missing block")

// ErrMissingID is returned when the YAML block lacks the required id field.
var ErrMissingID = errors.New("frontmatter: missing id")

// Meta is the typed frontmatter schema. Fields this core does not interpret
// are collected in Extra and written back untouched.
type Meta struct {
	ID       string         `yaml:"id"`
	Title    string         `yaml:"title"`
	Created  time.Time      `yaml:"created"`
	Modified time.Time      `yaml:"modified"`
	Project  string         `yaml:"project"`
	Type     string         `yaml:"type"`
	Tags     []string       `yaml:"tags"`
	Extra    map[string]any `yaml:",inline"`
}

// Parse splits raw file bytes into typed frontmatter and markdown body.
// The file must begin with a --- delimited YAML block containing at least
// an id; other fields fall back to defaults.
func Parse(data []byte) (*Meta, string, error) {
	block, body, err := split(data)
	if err != nil {
		return nil, "", err
	}

	var m Meta
	if err := yaml.Unmarshal(block, &m); err != nil {
		return nil, "", fmt.Errorf("frontmatter: decode: %w", err)
	}
	if strings.TrimSpace(m.ID) == "" {
		return nil, "", ErrMissingID
	}
	if m.Title == "" {
		m.Title = "Untitled"
	}
	if m.Type == "" {
		m.Type = "note"
	}
	if m.Project == "" {
		m.Project = "default"
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return &m, body, nil
}

// Encode renders the frontmatter block followed by the markdown body.
func Encode(m *Meta, body string) ([]byte, error) {
	block, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(block)
	buf.WriteString(delim + "\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// split separates the YAML block (between leading --- delimiters) from the
// markdown body.
func split(data []byte) ([]byte, string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", ErrNoFrontmatter
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", ErrNoFrontmatter
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")
	return block, body, nil
}
