// Package memory provides an in-memory vector index using brute-force
// cosine similarity. Used by tests and local runs without a remote index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ragchat/internal/domain"
)

// Store keeps entries in insertion order; equal-score search results
// keep that order.
type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   []domain.IndexEntry
}

func NewStore() *Store { return &Store{} }

// Upsert appends entries. The dimension is pinned by the first entry
// ever stored; later entries must match it. Entries become searchable
// only after Upsert returns.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) == 0 || e.Text == "" {
			return fmt.Errorf("%w: partial entry %q", domain.ErrIndexUnavailable, e.ID)
		}
		if s.dimension == 0 {
			s.dimension = len(e.Vector)
		}
		if len(e.Vector) != s.dimension {
			return fmt.Errorf("%w: vector dimension %d, index has %d", domain.ErrIndexUnavailable, len(e.Vector), s.dimension)
		}
	}
	s.entries = append(s.entries, entries...)
	return nil
}

// Search returns up to k fragments ordered by descending cosine
// similarity, ties broken by insertion order.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]domain.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 {
		k = 4
	}
	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(s.entries))
	for i := range s.entries {
		scores[i] = scored{pos: i, score: cosine(s.entries[i].Vector, vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	out := make([]domain.Fragment, 0, k)
	for _, sc := range scores[:k] {
		e := s.entries[sc.pos]
		out = append(out, domain.Fragment{EntryID: e.ID, Text: e.Text, Score: sc.score})
	}
	return out, nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
