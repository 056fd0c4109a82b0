// Package testutil provides shared test helpers for setting up notes
// directories, index stores, and services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/almahq/alma/internal/indexstore"
	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/search"
	"github.com/almahq/alma/internal/storage"
)

// Logger returns a quiet logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NotesDir creates a temporary notes directory with a storage provider.
func NotesDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, store
}

// IndexStore creates a temporary index store.
func IndexStore(t *testing.T) *indexstore.Store {
	t.Helper()
	idx, err := indexstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("indexstore.New: %v", err)
	}
	return idx
}

// SearchIndex creates a temporary SQLite search index that is cleaned up
// with the test.
func SearchIndex(t *testing.T) *search.Index {
	t.Helper()
	f, err := os.CreateTemp("", "alma-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	ix, err := search.Open(f.Name())
	if err != nil {
		t.Fatalf("search.Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

// Service wires a full note service over temporary storage and indexes.
// The search index is omitted; tests that need it use ServiceWithSearch.
func Service(t *testing.T) *notes.Service {
	t.Helper()
	_, store := NotesDir(t)
	return notes.NewService(store, IndexStore(t), nil, Logger())
}

// ServiceWithSearch wires a full note service including the search index.
func ServiceWithSearch(t *testing.T) *notes.Service {
	t.Helper()
	_, store := NotesDir(t)
	return notes.NewService(store, IndexStore(t), SearchIndex(t), Logger())
}
