package api

import (
	"github.com/almahq/alma/internal/maintainer"
	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/search"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Content string   `json:"content"`
	Project string   `json:"project"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

// UpdateNoteRequest is the request body for updating a note. Project, when
// non-empty, moves the note to another project.
type UpdateNoteRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Project string   `json:"project"`
}

// NoteResponse is a note enriched with backlink ids and resolved outgoing
// links (a nil id marks a broken link for the rendering layer).
type NoteResponse struct {
	*models.Note
	Backlinks []string       `json:"backlinks"`
	Links     []ResolvedLink `json:"links"`
}

// ResolvedLink pairs a [[link text]] with the id it resolves to, if any.
type ResolvedLink struct {
	Text string  `json:"text"`
	ID   *string `json:"id"`
}

// NoteListResponse wraps filtered note listings.
type NoteListResponse struct {
	Notes []notes.Summary `json:"notes"`
	Total int             `json:"total"`
}

// TagListResponse wraps the tag usage listing.
type TagListResponse struct {
	Tags []notes.TagCount `json:"tags"`
}

// SearchResponse wraps full-text search hits.
type SearchResponse struct {
	Results []search.Hit `json:"results"`
}

// ProjectListResponse wraps the project registry listing.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
}

// RegenerateResponse reports a completed regeneration pass.
type RegenerateResponse = maintainer.Result
