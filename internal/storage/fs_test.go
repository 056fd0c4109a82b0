package storage

import (
	"errors"
	"sort"
	"testing"

	"github.com/almahq/alma/internal/apperr"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\nid: x\n---\n\nHello\n")
	if err := s.Write("work/note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("work/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("ghost.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := tempRoot(t)
	if err := s.Delete("ghost.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("../escape.md", []byte("nope")); err == nil {
		t.Error("expected traversal rejection on write")
	}
	if _, err := s.Read("../../etc/passwd"); err == nil {
		t.Error("expected traversal rejection on read")
	}
	var serr *apperr.StorageError
	if err := s.Write("/abs/path.md", []byte("nope")); !errors.As(err, &serr) {
		t.Errorf("err = %v, want StorageError", err)
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("default/a.md", []byte("a"))
	_ = s.Write("work/b.md", []byte("b"))
	_ = s.Write("work/readme.txt", []byte("not markdown"))

	paths, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "default/a.md" || paths[1] != "work/b.md" {
		t.Errorf("paths = %v", paths)
	}

	workOnly, err := s.List("work")
	if err != nil {
		t.Fatalf("List(work): %v", err)
	}
	if len(workOnly) != 1 || workOnly[0] != "work/b.md" {
		t.Errorf("workOnly = %v", workOnly)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	s := tempRoot(t)
	paths, err := s.List("nope")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
}

func TestMove(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("personal/n.md", []byte("body"))
	if err := s.Move("personal/n.md", "work/n.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if s.Exists("personal/n.md") {
		t.Error("old path still exists")
	}
	got, err := s.Read("work/n.md")
	if err != nil || string(got) != "body" {
		t.Errorf("Read after move: %q, %v", got, err)
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	if s.Exists("nope.md") {
		t.Error("Exists(nope.md) = true")
	}
	_ = s.Write("yes.md", []byte("y"))
	if !s.Exists("yes.md") {
		t.Error("Exists(yes.md) = false")
	}
}
