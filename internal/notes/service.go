// Package notes implements the note store: CRUD over markdown files with
// YAML frontmatter, with every mutation synchronously followed by an index
// update. The file write always happens first; callers never observe a
// changed file whose indexes were updated ahead of it.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/samber/lo"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/frontmatter"
	"github.com/almahq/alma/internal/indexstore"
	"github.com/almahq/alma/internal/maintainer"
	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/search"
	"github.com/almahq/alma/internal/storage"
	"github.com/almahq/alma/internal/wikilink"
)

const (
	maxTitleLen = 100
	maxSlugLen  = 50
)

// Summary is a metadata index entry joined with its note id, the shape list
// and filter operations return.
type Summary struct {
	ID string `json:"id"`
	models.MetaEntry
}

// TagCount pairs a tag with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ListOptions filter and paginate List results.
type ListOptions struct {
	Project string
	Tag     string
	Limit   int
	Offset  int
}

// Service coordinates file storage, index maintenance, and the derived
// search index. The search index is optional; when absent, mutations skip it.
type Service struct {
	store    storage.Provider
	idx      *indexstore.Store
	maint    *maintainer.Maintainer
	resolver *wikilink.Resolver
	search   *search.Index
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a note service. searchIdx may be nil.
func NewService(store storage.Provider, idx *indexstore.Store, searchIdx *search.Index, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		idx:      idx,
		maint:    maintainer.New(idx),
		resolver: wikilink.NewResolver(idx),
		search:   searchIdx,
		logger:   logger,
		now:      time.Now,
	}
}

// Create allocates a new id, derives the title from the first content line,
// writes the note file, and indexes it. The id is never reused; a failed file
// write leaves every index untouched.
func (s *Service) Create(_ context.Context, content, project, contentType string, tags []string) (*models.Note, error) {
	if project == "" {
		project = "default"
	}
	if contentType == "" {
		contentType = models.TypeNote
	}

	now := s.now()
	note := &models.Note{
		ID:       uuid.NewString(),
		Title:    deriveTitle(content),
		Created:  now,
		Modified: now,
		Project:  project,
		Type:     contentType,
		Tags:     normalizeTags(tags),
		Content:  content,
	}
	note.FilePath = s.uniquePath(path.Join(project, filename(note.Title, now)), note.ID)

	if err := s.writeNote(note); err != nil {
		return nil, err
	}
	if err := s.maint.OnCreate(note); err != nil {
		return nil, err
	}
	s.searchUpsert(note)
	return note, nil
}

// Read loads a note by id. The metadata index supplies the file path (fast
// path); when the index has no entry, or the recorded file no longer holds
// this id, Read falls back to one full scan of the notes tree before
// declaring the note missing.
func (s *Service) Read(_ context.Context, id string) (*models.Note, error) {
	meta, err := s.idx.LoadMetadata()
	if err != nil {
		return nil, err
	}
	if entry, ok := meta[id]; ok {
		if note, err := s.loadAt(entry.FilePath); err == nil && note.ID == id {
			return note, nil
		}
	}
	return s.scanForID(id)
}

// Update overwrites content and tags, re-derives the title, and bumps the
// modified timestamp. newProject, when non-empty and different from the
// current project, moves the note file into the new project's directory;
// the id never changes.
func (s *Service) Update(ctx context.Context, id, content string, tags []string, newProject string) (*models.Note, error) {
	oldNote, err := s.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *oldNote
	updated.Content = content
	updated.Tags = normalizeTags(tags)
	updated.Title = deriveTitle(content)
	updated.Modified = s.now()

	if newProject != "" && newProject != oldNote.Project {
		updated.Project = newProject
		updated.FilePath = s.uniquePath(path.Join(newProject, path.Base(oldNote.FilePath)), id)
		if err := s.store.Move(oldNote.FilePath, updated.FilePath); err != nil {
			return nil, err
		}
	}

	if err := s.writeNote(&updated); err != nil {
		return nil, err
	}
	if err := s.maint.OnUpdate(oldNote, &updated); err != nil {
		return nil, err
	}
	s.searchUpsert(&updated)
	return &updated, nil
}

// Delete removes the note file and its index entries. Deleting a nonexistent
// id reports false without error; deleting twice ends in the same state as
// deleting once.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	note, err := s.Read(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.store.Delete(note.FilePath); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if err := s.maint.OnDelete(note); err != nil {
		return false, err
	}
	if s.search != nil {
		if err := s.search.Delete(note.ID); err != nil {
			s.logger.Warn("search: delete failed", slog.String("id", note.ID), slog.String("error", err.Error()))
		}
	}
	return true, nil
}

// List returns note summaries from the metadata index, newest first by
// creation time, optionally filtered by project or tag.
func (s *Service) List(_ context.Context, opts ListOptions) ([]Summary, error) {
	meta, err := s.idx.LoadMetadata()
	if err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	switch {
	case opts.Project != "":
		projects, err := s.idx.LoadProjects()
		if err != nil {
			return nil, err
		}
		allowed = toSet(projects[opts.Project])
	case opts.Tag != "":
		tags, err := s.idx.LoadTags()
		if err != nil {
			return nil, err
		}
		allowed = toSet(tags[opts.Tag])
	}

	out := make([]Summary, 0, len(meta))
	for id, entry := range meta {
		if allowed != nil {
			if _, ok := allowed[id]; !ok {
				continue
			}
		}
		out = append(out, Summary{ID: id, MetaEntry: entry})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})

	return paginate(out, opts.Offset, opts.Limit), nil
}

// Tags returns every tag with its usage count, ordered by count descending
// then name.
func (s *Service) Tags(_ context.Context) ([]TagCount, error) {
	tags, err := s.idx.LoadTags()
	if err != nil {
		return nil, err
	}
	out := make([]TagCount, 0, len(tags))
	for tag, ids := range tags {
		out = append(out, TagCount{Tag: tag, Count: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Tag) < strings.ToLower(out[j].Tag)
	})
	return out, nil
}

// Backlinks returns the ids of notes linking to the given title.
func (s *Service) Backlinks(_ context.Context, title string) ([]string, error) {
	return s.resolver.Backlinks(title)
}

// ResolveLink finds the note id a [[link text]] points to, or "" for a
// broken link.
func (s *Service) ResolveLink(_ context.Context, linkText string) (string, error) {
	return s.resolver.Resolve(linkText)
}

// Search delegates full-text search to the derived search index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]search.Hit, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search.Search(query, limit)
}

// Regenerate rebuilds all index documents from the markdown files and, when
// a search index is attached, rebuilds it in the same pass.
func (s *Service) Regenerate(_ context.Context) (maintainer.Result, error) {
	var perNote func(*models.Note)
	if s.search != nil {
		if err := s.search.Reset(); err != nil {
			s.logger.Warn("search: reset failed", slog.String("error", err.Error()))
		} else {
			perNote = func(n *models.Note) {
				if err := s.search.Upsert(n); err != nil {
					s.logger.Warn("search: upsert failed", slog.String("id", n.ID), slog.String("error", err.Error()))
				}
			}
		}
	}
	return s.maint.RegenerateAll(s.store, s.logger, perNote)
}

// Maintainer exposes the index maintainer (the watcher runs through it).
func (s *Service) Maintainer() *maintainer.Maintainer {
	return s.maint
}

// writeNote encodes the note with frontmatter and writes it to its path.
func (s *Service) writeNote(note *models.Note) error {
	data, err := frontmatter.Encode(&frontmatter.Meta{
		ID:       note.ID,
		Title:    note.Title,
		Created:  note.Created,
		Modified: note.Modified,
		Project:  note.Project,
		Type:     note.Type,
		Tags:     note.Tags,
		Extra:    note.Extra,
	}, note.Content)
	if err != nil {
		return err
	}
	return s.store.Write(note.FilePath, data)
}

// loadAt reads and parses the note file at path.
func (s *Service) loadAt(p string) (*models.Note, error) {
	data, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, &apperr.ParseError{Path: p, Err: err}
	}
	return &models.Note{
		ID:       meta.ID,
		Title:    meta.Title,
		Created:  meta.Created,
		Modified: meta.Modified,
		Project:  meta.Project,
		Type:     meta.Type,
		Tags:     meta.Tags,
		Content:  body,
		FilePath: p,
		Extra:    meta.Extra,
	}, nil
}

// scanForID walks the whole notes tree looking for a frontmatter id match.
// Unparseable files are skipped; this is the slow-path recovery behind Read.
func (s *Service) scanForID(id string) (*models.Note, error) {
	paths, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		note, err := s.loadAt(p)
		if err != nil {
			continue
		}
		if note.ID == id {
			return note, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// uniquePath disambiguates a filename collision (two notes slugging to the
// same name within one second) with a short id suffix.
func (s *Service) uniquePath(p, id string) string {
	if !s.store.Exists(p) {
		return p
	}
	ext := path.Ext(p)
	return fmt.Sprintf("%s-%s%s", strings.TrimSuffix(p, ext), id[:8], ext)
}

func (s *Service) searchUpsert(note *models.Note) {
	if s.search == nil {
		return
	}
	if err := s.search.Upsert(note); err != nil {
		s.logger.Warn("search: upsert failed", slog.String("id", note.ID), slog.String("error", err.Error()))
	}
}

// deriveTitle takes the first non-empty content line, capped at 100 runes.
func deriveTitle(content string) string {
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxTitleLen {
			return string(runes[:maxTitleLen])
		}
		return line
	}
	return "Untitled"
}

// filename builds the YYYYMMDD-HHMMSS-slug.md name for a note.
func filename(title string, t time.Time) string {
	sl := slug.Make(title)
	if len(sl) > maxSlugLen {
		sl = strings.Trim(sl[:maxSlugLen], "-")
	}
	if sl == "" {
		sl = "note"
	}
	return fmt.Sprintf("%s-%s.md", t.Format("20060102-150405"), sl)
}

func normalizeTags(tags []string) []string {
	cleaned := lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
	return lo.Uniq(cleaned)
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
