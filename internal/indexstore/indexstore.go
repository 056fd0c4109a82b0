// Package indexstore persists the four derived index documents as JSON files.
// Each document is rewritten whole on save; a missing or unreadable document
// loads as empty, since the markdown files are the source of truth and a
// regeneration pass can always rebuild it.
package indexstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/models"
)

// Index document file names.
const (
	ProjectsFile  = "projects.json"
	TagsFile      = "tags.json"
	MetadataFile  = "metadata.json"
	WikilinksFile = "wikilinks.json"
)

// Store gives typed load/save access to the index documents in one directory.
type Store struct {
	dir string
}

// New creates the index directory if needed and returns a Store for it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("indexstore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the index directory.
func (s *Store) Dir() string { return s.dir }

// LoadProjects returns the project index (project id -> note ids).
func (s *Store) LoadProjects() (map[string][]string, error) {
	return load[[]string](s, ProjectsFile)
}

// SaveProjects persists the project index.
func (s *Store) SaveProjects(idx map[string][]string) error {
	return save(s, ProjectsFile, idx)
}

// LoadTags returns the tag index (tag -> note ids).
func (s *Store) LoadTags() (map[string][]string, error) {
	return load[[]string](s, TagsFile)
}

// SaveTags persists the tag index.
func (s *Store) SaveTags(idx map[string][]string) error {
	return save(s, TagsFile, idx)
}

// LoadMetadata returns the metadata index (note id -> metadata entry).
func (s *Store) LoadMetadata() (map[string]models.MetaEntry, error) {
	return load[models.MetaEntry](s, MetadataFile)
}

// SaveMetadata persists the metadata index.
func (s *Store) SaveMetadata(idx map[string]models.MetaEntry) error {
	return save(s, MetadataFile, idx)
}

// LoadWikilinks returns the wiki-link index (note id -> link texts).
func (s *Store) LoadWikilinks() (map[string][]string, error) {
	return load[[]string](s, WikilinksFile)
}

// SaveWikilinks persists the wiki-link index.
func (s *Store) SaveWikilinks(idx map[string][]string) error {
	return save(s, WikilinksFile, idx)
}

// ResetAll overwrites every index document with its empty representation.
// Used at the start of a regeneration pass; indexes are never partially
// cleared.
func (s *Store) ResetAll() error {
	if err := s.SaveProjects(map[string][]string{}); err != nil {
		return err
	}
	if err := s.SaveTags(map[string][]string{}); err != nil {
		return err
	}
	if err := s.SaveMetadata(map[string]models.MetaEntry{}); err != nil {
		return err
	}
	return s.SaveWikilinks(map[string][]string{})
}

// load reads one index document. Missing or corrupt documents read as empty.
func load[T any](s *Store, name string) (map[string]T, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]T{}, nil
		}
		return nil, fmt.Errorf("indexstore: read %s: %w", name, err)
	}
	var idx map[string]T
	if err := json.Unmarshal(data, &idx); err != nil {
		// Corrupt index: treat as empty, regeneration is the repair path.
		return map[string]T{}, nil
	}
	if idx == nil {
		idx = map[string]T{}
	}
	return idx, nil
}

// save rewrites one index document atomically: tmp file, fsync, rename.
func save[T any](s *Store, name string, idx map[string]T) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".alma-idx-*")
	if err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return &apperr.IndexWriteError{Index: name, Err: err}
	}
	success = true
	return nil
}
