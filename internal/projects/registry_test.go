package projects_test

import (
	"errors"
	"testing"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/projects"
	"github.com/almahq/alma/internal/testutil"
)

func newRegistry(t *testing.T) *projects.Registry {
	t.Helper()
	return projects.NewRegistry(testutil.IndexStore(t))
}

func TestDefaultProjectAlwaysPresent(t *testing.T) {
	r := newRegistry(t)
	all, err := r.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0].ID != projects.DefaultID || !all[0].IsDefault {
		t.Errorf("all = %+v", all)
	}
	if !r.Exists(projects.DefaultID) {
		t.Error("default project does not exist")
	}
}

func TestCreateSlugsName(t *testing.T) {
	r := newRegistry(t)
	p, err := r.Create(projects.CreateInput{Name: "Side Projects", Color: "green"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != "side-projects" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.Color != "green" {
		t.Errorf("Color = %q", p.Color)
	}

	got, err := r.Get("side-projects")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Side Projects" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestCreateDefaultsColorToGray(t *testing.T) {
	r := newRegistry(t)
	p, err := r.Create(projects.CreateInput{Name: "Plain"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Color != "gray" {
		t.Errorf("Color = %q", p.Color)
	}
}

func TestCreateRejectsDuplicateAndInvalid(t *testing.T) {
	r := newRegistry(t)
	if _, err := r.Create(projects.CreateInput{Name: "Work"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.Create(projects.CreateInput{Name: "work"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v, want ErrAlreadyExists", err)
	}
	_, err = r.Create(projects.CreateInput{Name: ""})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty name err = %v, want ErrInvalid", err)
	}
	_, err = r.Create(projects.CreateInput{Name: "Bad Color", Color: "chartreuse"})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad color err = %v, want ErrInvalid", err)
	}
}

func TestUpdate(t *testing.T) {
	r := newRegistry(t)
	if _, err := r.Create(projects.CreateInput{Name: "Work"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	name := "Work Stuff"
	color := "purple"
	p, err := r.Update("work", projects.UpdateInput{Name: &name, Color: &color})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Name != "Work Stuff" || p.Color != "purple" {
		t.Errorf("updated = %+v", p)
	}

	_, err = r.Update("missing", projects.UpdateInput{Name: &name})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRefusals(t *testing.T) {
	idx := testutil.IndexStore(t)
	r := projects.NewRegistry(idx)

	if err := r.Delete(projects.DefaultID); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("delete default err = %v, want ErrInvalid", err)
	}
	if err := r.Delete("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete missing err = %v, want ErrNotFound", err)
	}

	if _, err := r.Create(projects.CreateInput{Name: "Busy"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := idx.SaveProjects(map[string][]string{"busy": {"note-1"}}); err != nil {
		t.Fatalf("SaveProjects: %v", err)
	}
	if err := r.Delete("busy"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("delete non-empty err = %v, want ErrInvalid", err)
	}

	if _, err := r.Create(projects.CreateInput{Name: "Empty"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Delete("empty"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if r.Exists("empty") {
		t.Error("deleted project still exists")
	}
}

func TestNoteCounts(t *testing.T) {
	idx := testutil.IndexStore(t)
	r := projects.NewRegistry(idx)
	if _, err := r.Create(projects.CreateInput{Name: "Work"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := idx.SaveProjects(map[string][]string{"work": {"a", "b"}, "default": {"c"}}); err != nil {
		t.Fatalf("SaveProjects: %v", err)
	}
	all, err := r.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	counts := map[string]int{}
	for _, p := range all {
		counts[p.ID] = p.NoteCount
	}
	if counts["work"] != 2 || counts["default"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
