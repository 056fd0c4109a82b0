// Package projects manages the project registry stored alongside the index
// documents. A project is a single-membership grouping for notes; the
// "default" project always exists and cannot be removed.
package projects

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gosimple/slug"
	"github.com/samber/lo"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/indexstore"
	"github.com/almahq/alma/internal/models"
)

// ConfigFile is the registry document name inside the index directory.
const ConfigFile = "projects_config.json"

// DefaultID is the id of the built-in project.
const DefaultID = "default"

var validColors = []string{"blue", "green", "purple", "orange", "red", "gray", "pink", "yellow"}

// CreateInput carries the fields for a new project.
type CreateInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Validate checks the input against the registry rules.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Color, validation.In(lo.ToAnySlice(validColors)...)),
	)
}

// UpdateInput carries optional field changes for an existing project.
type UpdateInput struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type document struct {
	Projects []models.Project `json:"projects"`
}

// Registry persists the project list as a JSON document.
type Registry struct {
	path string
	idx  *indexstore.Store
	mu   sync.Mutex
	now  func() time.Time
}

// NewRegistry creates a Registry stored in the index directory.
func NewRegistry(idx *indexstore.Store) *Registry {
	return &Registry{
		path: filepath.Join(idx.Dir(), ConfigFile),
		idx:  idx,
		now:  time.Now,
	}
}

// All returns every project with its note count from the project index.
func (r *Registry) All() ([]models.Project, error) {
	list, err := r.load()
	if err != nil {
		return nil, err
	}
	counts, err := r.idx.LoadProjects()
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].NoteCount = len(counts[list[i].ID])
	}
	return list, nil
}

// Get returns one project by id, or ErrNotFound.
func (r *Registry) Get(id string) (*models.Project, error) {
	list, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Exists reports whether a project id is registered.
func (r *Registry) Exists(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// Create registers a new project. The id is the slugified name; duplicates
// are rejected and unknown colors fall back to gray.
func (r *Registry) Create(in CreateInput) (*models.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	id := slug.Make(in.Name)
	if id == "" {
		return nil, fmt.Errorf("%w: name produces empty id", apperr.ErrInvalid)
	}
	color := in.Color
	if color == "" {
		color = "gray"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(list, func(p models.Project) bool { return p.ID == id }) {
		return nil, fmt.Errorf("project %q: %w", id, apperr.ErrAlreadyExists)
	}

	project := models.Project{
		ID:          id,
		Name:        in.Name,
		Color:       color,
		Description: in.Description,
		Created:     r.now(),
	}
	list = append(list, project)
	if err := r.save(list); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update changes name, color, or description of an existing project.
func (r *Registry) Update(id string, in UpdateInput) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}
	i := lo.IndexOf(lo.Map(list, func(p models.Project, _ int) string { return p.ID }), id)
	if i < 0 {
		return nil, apperr.ErrNotFound
	}

	if in.Name != nil && *in.Name != "" {
		list[i].Name = *in.Name
	}
	if in.Color != nil && lo.Contains(validColors, *in.Color) {
		list[i].Color = *in.Color
	}
	if in.Description != nil {
		list[i].Description = *in.Description
	}

	if err := r.save(list); err != nil {
		return nil, err
	}
	return &list[i], nil
}

// Delete removes a project. The default project and projects that still hold
// notes are refused.
func (r *Registry) Delete(id string) error {
	if id == DefaultID {
		return fmt.Errorf("%w: cannot delete default project", apperr.ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return err
	}
	if !lo.ContainsBy(list, func(p models.Project) bool { return p.ID == id }) {
		return apperr.ErrNotFound
	}

	counts, err := r.idx.LoadProjects()
	if err != nil {
		return err
	}
	if n := len(counts[id]); n > 0 {
		return fmt.Errorf("%w: project holds %d notes", apperr.ErrInvalid, n)
	}

	list = lo.Reject(list, func(p models.Project, _ int) bool { return p.ID == id })
	return r.save(list)
}

// load reads the registry, guaranteeing the default project is present.
func (r *Registry) load() ([]models.Project, error) {
	defaultProject := models.Project{
		ID:          DefaultID,
		Name:        "Default",
		Color:       "blue",
		Description: "Default project for all notes",
		IsDefault:   true,
		Created:     r.now(),
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Project{defaultProject}, nil
		}
		return nil, fmt.Errorf("projects: read registry: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return []models.Project{defaultProject}, nil
	}
	if !lo.ContainsBy(doc.Projects, func(p models.Project) bool { return p.ID == DefaultID }) {
		doc.Projects = append([]models.Project{defaultProject}, doc.Projects...)
	}
	return doc.Projects, nil
}

func (r *Registry) save(list []models.Project) error {
	data, err := json.MarshalIndent(document{Projects: list}, "", "  ")
	if err != nil {
		return &apperr.IndexWriteError{Index: ConfigFile, Err: err}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return &apperr.IndexWriteError{Index: ConfigFile, Err: err}
	}
	return nil
}
