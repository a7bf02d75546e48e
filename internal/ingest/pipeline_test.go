package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ragchat/internal/chunker"
	"ragchat/internal/domain"
	"ragchat/internal/vectorstore/memory"
)

// fakeEmbedder maps each text to a deterministic unit vector.
type fakeEmbedder struct {
	calls [][]string
	fail  error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func TestRunIngestsTwoParagraphChunks(t *testing.T) {
	emb := &fakeEmbedder{}
	store := memory.NewStore()
	p := New(chunker.NewRecursive(chunker.Config{ChunkSize: 10, ChunkOverlap: 0}), emb, store)

	n, err := p.Run(context.Background(), "A.\n\nB.")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("ingested %d entries, want 2", n)
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d entries, want 2", store.Len())
	}
	if len(emb.calls) != 1 || len(emb.calls[0]) != 2 {
		t.Fatalf("expected one batch embedding call with 2 texts, got %v", emb.calls)
	}
	if strings.TrimSpace(emb.calls[0][0]) != "A." || strings.TrimSpace(emb.calls[0][1]) != "B." {
		t.Errorf("unexpected chunk texts: %q", emb.calls[0])
	}
}

func TestRunEmptyInputIsNoop(t *testing.T) {
	emb := &fakeEmbedder{}
	store := memory.NewStore()
	p := New(chunker.NewRecursive(chunker.Config{}), emb, store)

	n, err := p.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 || store.Len() != 0 || len(emb.calls) != 0 {
		t.Errorf("empty input should touch nothing: n=%d store=%d calls=%d", n, store.Len(), len(emb.calls))
	}
}

func TestRunAbortsOnEmbeddingFailure(t *testing.T) {
	emb := &fakeEmbedder{fail: domain.ErrEmbeddingService}
	store := memory.NewStore()
	p := New(chunker.NewRecursive(chunker.Config{ChunkSize: 10}), emb, store)

	_, err := p.Run(context.Background(), "A.\n\nB.")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected embedding error, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed run must not write to the index, have %d entries", store.Len())
	}
}

func TestRunIdempotentChunkTexts(t *testing.T) {
	text := "first paragraph here\n\nsecond paragraph follows\n\nthird one"
	run := func() []string {
		emb := &fakeEmbedder{}
		p := New(chunker.NewRecursive(chunker.Config{ChunkSize: 25, ChunkOverlap: 5}), emb, memory.NewStore())
		if _, err := p.Run(context.Background(), text); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return emb.calls[0]
	}
	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestRunFileMissingSource(t *testing.T) {
	p := New(chunker.NewRecursive(chunker.Config{}), &fakeEmbedder{}, memory.NewStore())
	if _, err := p.RunFile(context.Background(), "does-not-exist.txt"); err == nil {
		t.Fatal("expected error for missing source file")
	}
}
