// Package ingest builds the searchable corpus: chunk the source text,
// embed every chunk, and bulk-insert the results into the vector index.
package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"ragchat/internal/domain"
)

// Pipeline runs one ingestion pass. It either completes or aborts on
// the first failing stage; re-running replaces the corpus wholesale,
// so there is no checkpointing or partial-success reporting.
type Pipeline struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
}

func New(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore) *Pipeline {
	return &Pipeline{chunker: chunker, embedder: embedder, store: store}
}

// RunFile reads the source file and ingests its contents. Returns the
// number of index entries written.
func (p *Pipeline) RunFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading source file: %w", err)
	}
	return p.Run(ctx, string(data))
}

// Run ingests the given text. Every chunk passes through exactly one
// embedding computation before its entry reaches the index; a chunk
// whose vector is missing fails the run instead of producing a partial
// entry.
func (p *Pipeline) Run(ctx context.Context, text string) (int, error) {
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrEmbeddingService, len(vectors), len(chunks))
	}
	entries := make([]domain.IndexEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = domain.IndexEntry{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Text:   ch.Text,
			Metadata: map[string]any{
				"source_offset":  ch.SourceOffset,
				"sequence_index": ch.SequenceIndex,
			},
		}
	}
	if err := p.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("upserting entries: %w", err)
	}
	return len(entries), nil
}
