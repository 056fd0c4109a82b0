package indexstore

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/almahq/alma/internal/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), ".indexes"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestLoadMissingIsEmpty(t *testing.T) {
	s := newStore(t)
	tags, err := s.LoadTags()
	if err != nil {
		t.Fatalf("LoadTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags = %v, want empty", tags)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	want := map[string][]string{"work": {"a", "b"}, "personal": {"c"}}
	if err := s.SaveProjects(want); err != nil {
		t.Fatalf("SaveProjects: %v", err)
	}
	got, err := s.LoadProjects()
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("projects = %v, want %v", got, want)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	s := newStore(t)
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	want := map[string]models.MetaEntry{
		"id-1": {
			Title:    "Sprint planning",
			Created:  created,
			Modified: created,
			FilePath: "work/20250314-092653-sprint-planning.md",
			Project:  "work",
			Type:     models.TypeNote,
			Tags:     []string{"sprint"},
		},
	}
	if err := s.SaveMetadata(want); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	got, err := s.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	entry, ok := got["id-1"]
	if !ok {
		t.Fatalf("entry missing: %v", got)
	}
	if entry.Title != "Sprint planning" || entry.Project != "work" || !entry.Created.Equal(created) {
		t.Errorf("entry = %+v", entry)
	}
}

func TestCorruptDocumentLoadsEmpty(t *testing.T) {
	s := newStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir(), TagsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tags, err := s.LoadTags()
	if err != nil {
		t.Fatalf("LoadTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags = %v, want empty", tags)
	}
}

func TestResetAll(t *testing.T) {
	s := newStore(t)
	_ = s.SaveTags(map[string][]string{"x": {"a"}})
	_ = s.SaveProjects(map[string][]string{"work": {"a"}})
	if err := s.ResetAll(); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	for name, loadFn := range map[string]func() (map[string][]string, error){
		"projects":  s.LoadProjects,
		"tags":      s.LoadTags,
		"wikilinks": s.LoadWikilinks,
	} {
		idx, err := loadFn()
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(idx) != 0 {
			t.Errorf("%s = %v, want empty", name, idx)
		}
	}
	meta, err := s.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if len(meta) != 0 {
		t.Errorf("metadata = %v, want empty", meta)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	if err := s.SaveTags(map[string][]string{"go": {"a"}}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != TagsFile {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}
