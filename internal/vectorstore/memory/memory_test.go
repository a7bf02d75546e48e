package memory

import (
	"context"
	"errors"
	"testing"

	"ragchat/internal/domain"
)

func entry(id, text string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{ID: id, Vector: vec, Text: text}
}

func TestSearchTopKDescending(t *testing.T) {
	s := NewStore()
	err := s.Upsert(context.Background(), []domain.IndexEntry{
		entry("e1", "one", 1, 0),
		entry("e2", "two", 0.9, 0.1),
		entry("e3", "three", 0, 1),
		entry("e4", "four", 0.5, 0.5),
		entry("e5", "five", -1, 0),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted descending: %v", got)
		}
	}
	if got[0].EntryID != "e1" {
		t.Errorf("best match = %s, want e1", got[0].EntryID)
	}
}

func TestSearchTieBrokenByInsertionOrder(t *testing.T) {
	s := NewStore()
	err := s.Upsert(context.Background(), []domain.IndexEntry{
		entry("first", "a", 1, 0),
		entry("second", "b", 2, 0), // same direction, same cosine
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].EntryID != "first" || got[1].EntryID != "second" {
		t.Errorf("tie not broken by insertion order: %v", got)
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	s := NewStore()
	if err := s.Upsert(context.Background(), []domain.IndexEntry{entry("e1", "one", 1)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Search(context.Background(), []float32{1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d results, want 1", len(got))
	}
}

func TestUpsertRejectsPartialEntry(t *testing.T) {
	s := NewStore()
	err := s.Upsert(context.Background(), []domain.IndexEntry{{ID: "bad", Vector: []float32{1}}})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("partial entry should be rejected, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("rejected upsert must not be observable, have %d entries", s.Len())
	}
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := NewStore()
	if err := s.Upsert(context.Background(), []domain.IndexEntry{entry("e1", "one", 1, 2)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	err := s.Upsert(context.Background(), []domain.IndexEntry{entry("e2", "two", 1)})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("dimension mismatch should be rejected, got %v", err)
	}
}
