package search_test

import (
	"testing"
	"time"

	"github.com/almahq/alma/internal/models"
	"github.com/almahq/alma/internal/testutil"
)

func sample(id, title, body string, tags ...string) *models.Note {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &models.Note{
		ID:       id,
		Title:    title,
		Created:  now,
		Modified: now,
		Project:  "work",
		Type:     models.TypeNote,
		Tags:     tags,
		Content:  body,
	}
}

func TestUpsertAndSearch(t *testing.T) {
	ix := testutil.SearchIndex(t)

	if err := ix.Upsert(sample("a", "Kubernetes ingress", "Debugging the ingress controller.")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Upsert(sample("b", "Grocery list", "Milk and bread.")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := ix.Search("ingress", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Errorf("hits = %v", hits)
	}
}

func TestUpsertReplaces(t *testing.T) {
	ix := testutil.SearchIndex(t)

	if err := ix.Upsert(sample("a", "Before", "old content")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Upsert(sample("a", "After", "new content")); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	hits, err := ix.Search("content", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "After" {
		t.Errorf("hits = %v", hits)
	}
	stale, err := ix.Search("old", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale hits = %v", stale)
	}
}

func TestSearchByTag(t *testing.T) {
	ix := testutil.SearchIndex(t)

	if err := ix.Upsert(sample("a", "Note", "body", "kubernetes")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	hits, err := ix.Search("kubernetes", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Errorf("hits = %v", hits)
	}
}

func TestDelete(t *testing.T) {
	ix := testutil.SearchIndex(t)

	if err := ix.Upsert(sample("a", "Doomed", "body")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	hits, err := ix.Search("Doomed", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v", hits)
	}
	// Deleting an absent id is fine.
	if err := ix.Delete("a"); err != nil {
		t.Fatalf("Delete replay: %v", err)
	}
}

func TestReset(t *testing.T) {
	ix := testutil.SearchIndex(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := ix.Upsert(sample(id, "Note "+id, "searchable body")); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := ix.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	hits, err := ix.Search("searchable", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v", hits)
	}
}
