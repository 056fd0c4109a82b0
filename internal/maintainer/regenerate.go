package maintainer

import (
	"log/slog"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/frontmatter"
	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/storage"
)

// Result reports the outcome of a regeneration pass.
type Result struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// RegenerateAll rebuilds every index document from the markdown files:
// reset all four to empty, walk the notes tree, parse each file, and apply
// the same per-note entry construction the synchronous path uses. Files with
// malformed or id-less frontmatter are skipped and counted, never fatal; only
// the inability to scan the tree or write the index documents aborts the run.
//
// perNote, if non-nil, is called for every successfully parsed note so that
// derived stores (e.g. the search index) can rebuild in the same pass.
func (m *Maintainer) RegenerateAll(store storage.Provider, logger *slog.Logger, perNote func(*models.Note)) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.idx.ResetAll(); err != nil {
		return Result{}, err
	}

	paths, err := store.List("")
	if err != nil {
		return Result{}, err
	}

	docs := emptyDocuments()
	var res Result

	for _, path := range paths {
		note, err := loadNoteFile(store, path)
		if err != nil {
			res.Skipped++
			logger.Warn("regenerate: skipping file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		docs.add(note)
		if perNote != nil {
			perNote(note)
		}
		res.Indexed++
	}

	if err := docs.saveAll(m.idx); err != nil {
		return Result{}, err
	}

	logger.Info("regenerate: complete",
		slog.Int("indexed", res.Indexed),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

// loadNoteFile reads and parses one markdown file into a Note.
func loadNoteFile(store storage.Provider, path string) (*models.Note, error) {
	data, err := store.Read(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, &apperr.ParseError{Path: path, Err: err}
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
		FilePath: path,
		Extra:    meta.Extra,
	}, nil
}
