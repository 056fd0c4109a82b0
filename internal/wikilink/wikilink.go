// Package wikilink extracts [[Title]] references from note content and
// resolves them to note ids for backlink computation.
package wikilink

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/almahq/alma/internal/indexstore"
)

var linkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// Extract returns the distinct, trimmed link texts found in content.
// Extraction is case-sensitive; [[Alpha]] and [[alpha]] are two links.
func Extract(content string) []string {
	matches := linkRe.FindAllStringSubmatch(content, -1)
	var out []string
	for _, m := range matches {
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return lo.Uniq(out)
}

// Resolver answers link-text and backlink queries from the index documents.
type Resolver struct {
	idx *indexstore.Store
}

// NewResolver creates a Resolver over the given index store.
func NewResolver(idx *indexstore.Store) *Resolver {
	return &Resolver{idx: idx}
}

// Resolve finds the id of the note whose title matches linkText
// case-insensitively. An empty result is not an error: a broken link is a
// valid outcome that callers render differently.
func (r *Resolver) Resolve(linkText string) (string, error) {
	meta, err := r.idx.LoadMetadata()
	if err != nil {
		return "", err
	}
	want := strings.ToLower(linkText)
	for id, entry := range meta {
		if strings.ToLower(entry.Title) == want {
			return id, nil
		}
	}
	return "", nil
}

// Backlinks returns the ids of every note whose extracted links contain the
// given title. Matching is by link text, case-insensitive; a retitled note
// keeps its old inbound links orphaned until the linking notes are re-saved.
func (r *Resolver) Backlinks(title string) ([]string, error) {
	links, err := r.idx.LoadWikilinks()
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(title)
	var out []string
	for id, texts := range links {
		if lo.ContainsBy(texts, func(t string) bool { return strings.ToLower(t) == want }) {
			out = append(out, id)
		}
	}
	return out, nil
}
