// Package maintainer keeps the four index documents consistent with the
// authoritative markdown files. Every note mutation flows through here
// synchronously: the caller always has the before and after state of the
// note in hand, so each index receives a precise, minimal delta instead of
// a full rescan.
package maintainer

import (
	"sync"

	"github.com/samber/lo"

	"github.com/almahq/alma/internal/indexstore"
	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/wikilink"
)

// Maintainer applies index deltas for note create/update/delete operations.
// A single mutex serialises the read-modify-write cycle across all four
// documents; in a single-writer deployment it is uncontended.
type Maintainer struct {
	idx *indexstore.Store
	mu  sync.Mutex
}

// New creates a Maintainer over the given index store.
func New(idx *indexstore.Store) *Maintainer {
	return &Maintainer{idx: idx}
}

// OnCreate writes fresh index entries for a newly persisted note.
func (m *Maintainer) OnCreate(note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := loadAll(m.idx)
	if err != nil {
		return err
	}
	docs.add(note)
	return docs.saveAll(m.idx)
}

// OnUpdate applies the delta between the old and new state of a note.
// Tag sets are updated by symmetric difference, the project set only when
// membership changed; metadata and wiki-links are refreshed unconditionally
// (content is never diffed, any edit re-extracts links in full).
func (m *Maintainer) OnUpdate(oldNote, newNote *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, added := lo.Difference(oldNote.Tags, newNote.Tags)
	if len(removed) > 0 || len(added) > 0 {
		tags, err := m.idx.LoadTags()
		if err != nil {
			return err
		}
		for _, t := range removed {
			removeID(tags, t, newNote.ID)
		}
		for _, t := range added {
			addID(tags, t, newNote.ID)
		}
		if err := m.idx.SaveTags(tags); err != nil {
			return err
		}
	}

	if oldNote.Project != newNote.Project {
		projects, err := m.idx.LoadProjects()
		if err != nil {
			return err
		}
		removeID(projects, oldNote.Project, newNote.ID)
		addID(projects, newNote.Project, newNote.ID)
		if err := m.idx.SaveProjects(projects); err != nil {
			return err
		}
	}

	meta, err := m.idx.LoadMetadata()
	if err != nil {
		return err
	}
	meta[newNote.ID] = newNote.Meta()
	if err := m.idx.SaveMetadata(meta); err != nil {
		return err
	}

	links, err := m.idx.LoadWikilinks()
	if err != nil {
		return err
	}
	links[newNote.ID] = wikilink.Extract(newNote.Content)
	return m.idx.SaveWikilinks(links)
}

// OnDelete removes every index entry for the note. Removing an id from a set
// that does not contain it is a no-op, so replaying a delete is harmless.
func (m *Maintainer) OnDelete(note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	projects, err := m.idx.LoadProjects()
	if err != nil {
		return err
	}
	removeID(projects, note.Project, note.ID)
	if err := m.idx.SaveProjects(projects); err != nil {
		return err
	}

	tags, err := m.idx.LoadTags()
	if err != nil {
		return err
	}
	for _, t := range note.Tags {
		removeID(tags, t, note.ID)
	}
	if err := m.idx.SaveTags(tags); err != nil {
		return err
	}

	meta, err := m.idx.LoadMetadata()
	if err != nil {
		return err
	}
	delete(meta, note.ID)
	if err := m.idx.SaveMetadata(meta); err != nil {
		return err
	}

	links, err := m.idx.LoadWikilinks()
	if err != nil {
		return err
	}
	delete(links, note.ID)
	return m.idx.SaveWikilinks(links)
}

// documents holds all four indexes in memory for batch construction.
type documents struct {
	projects map[string][]string
	tags     map[string][]string
	meta     map[string]models.MetaEntry
	links    map[string][]string
}

func loadAll(idx *indexstore.Store) (*documents, error) {
	projects, err := idx.LoadProjects()
	if err != nil {
		return nil, err
	}
	tags, err := idx.LoadTags()
	if err != nil {
		return nil, err
	}
	meta, err := idx.LoadMetadata()
	if err != nil {
		return nil, err
	}
	links, err := idx.LoadWikilinks()
	if err != nil {
		return nil, err
	}
	return &documents{projects: projects, tags: tags, meta: meta, links: links}, nil
}

func emptyDocuments() *documents {
	return &documents{
		projects: map[string][]string{},
		tags:     map[string][]string{},
		meta:     map[string]models.MetaEntry{},
		links:    map[string][]string{},
	}
}

// add constructs the per-note entries in every document. Both the synchronous
// create path and the regenerator go through this single function, so the two
// paths can never drift in format.
func (d *documents) add(note *models.Note) {
	addID(d.projects, note.Project, note.ID)
	for _, t := range note.Tags {
		addID(d.tags, t, note.ID)
	}
	d.meta[note.ID] = note.Meta()
	d.links[note.ID] = wikilink.Extract(note.Content)
}

func (d *documents) saveAll(idx *indexstore.Store) error {
	if err := idx.SaveProjects(d.projects); err != nil {
		return err
	}
	if err := idx.SaveTags(d.tags); err != nil {
		return err
	}
	if err := idx.SaveMetadata(d.meta); err != nil {
		return err
	}
	return idx.SaveWikilinks(d.links)
}

// addID inserts id into the set under key, preserving set semantics.
func addID(m map[string][]string, key, id string) {
	if lo.Contains(m[key], id) {
		return
	}
	m[key] = append(m[key], id)
}

// removeID drops id from the set under key and deletes the key once the set
// is empty. Absent ids and keys are no-ops.
func removeID(m map[string][]string, key, id string) {
	ids, ok := m[key]
	if !ok {
		return
	}
	filtered := lo.Without(ids, id)
	if len(filtered) == 0 {
		delete(m, key)
		return
	}
	m[key] = filtered
}
