package domain

import (
	"context"
	"errors"
)

// Chunk is a bounded fragment of source text produced for indexing.
type Chunk struct {
	Text          string
	SourceOffset  int
	SequenceIndex int
}

// IndexEntry is what the vector index stores durably: one embedded chunk
// plus whatever metadata the ingester attaches.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// Fragment is a single similarity-search hit.
type Fragment struct {
	EntryID string
	Text    string
	Score   float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange half in a conversation, owned by the active session.
type Turn struct {
	Role Role
	Text string
}

// Chunker splits raw source text into fragments sized for embedding.
type Chunker interface {
	Split(text string) []Chunk
}

// Embedder converts texts into fixed-dimension vectors, one per input,
// order-preserving. Either every vector is returned or none are.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists index entries and supports top-k similarity search.
type VectorStore interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
	Search(ctx context.Context, vector []float32, k int) ([]Fragment, error)
}

// LLM maps a rendered prompt to a single completion string.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Error taxonomy. Every boundary wraps its failures in exactly one of
// these so callers can classify with errors.Is without inspecting text.
var (
	ErrEmbeddingService = errors.New("embedding service error")
	ErrIndexUnavailable = errors.New("vector index unavailable")
	ErrLLMCall          = errors.New("llm call failed")
	ErrConfiguration    = errors.New("configuration error")
)
