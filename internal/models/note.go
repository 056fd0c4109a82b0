// Package models defines the domain types for Alma.
package models

import "time"

// Content types a note may carry. The index layer treats these as
// informational labels only.
const (
	TypeNote      = "note"
	TypeIdea      = "idea"
	TypeTask      = "task"
	TypeReference = "reference"
)

// Note is the authoritative entity, persisted as one markdown file with YAML
// frontmatter. ID is assigned at creation and never changes; FilePath is
// derived from project + timestamp + slug and may change when the note moves
// between projects.
type Note struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Project  string    `json:"project"`
	Type     string    `json:"type"`
	Tags     []string  `json:"tags"`
	Content  string    `json:"content"`
	FilePath string    `json:"file_path"`

	// Extra carries frontmatter fields this core does not interpret.
	// They are written back untouched.
	Extra map[string]any `json:"-"`
}

// MetaEntry is one record in the metadata index: everything list and filter
// operations need without opening the note file.
type MetaEntry struct {
	Title    string    `json:"title"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	FilePath string    `json:"file_path"`
	Project  string    `json:"project"`
	Type     string    `json:"type"`
	Tags     []string  `json:"tags"`
}

// Meta returns the metadata index entry for the note.
func (n *Note) Meta() MetaEntry {
	return MetaEntry{
		Title:    n.Title,
		Created:  n.Created,
		Modified: n.Modified,
		FilePath: n.FilePath,
		Project:  n.Project,
		Type:     n.Type,
		Tags:     n.Tags,
	}
}

// Project describes one entry in the project registry.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	Created     time.Time `json:"created"`
	NoteCount   int       `json:"note_count,omitempty"`
}
