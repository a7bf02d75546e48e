package chat

import (
	"context"
	"fmt"
	"strings"

	"ragchat/internal/domain"
	"ragchat/internal/prompt"
)

// Rewriter folds conversation context into a self-contained question.
type Rewriter struct {
	llm domain.LLM
}

func NewRewriter(llm domain.LLM) *Rewriter { return &Rewriter{llm: llm} }

// Rewrite returns the model's output verbatim as the standalone
// question. The LLM is invoked on every call, first turn included; the
// template itself tells the model the history may be empty.
func (r *Rewriter) Rewrite(ctx context.Context, question, historyText string) (string, error) {
	p, err := prompt.Standalone.Render(map[string]string{
		"conv_history": historyText,
		"question":     question,
	})
	if err != nil {
		return "", err
	}
	return r.llm.Complete(ctx, p)
}

// Retriever embeds a standalone question and returns the top-k most
// similar fragments in the index's order. No threshold, no re-ranking.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
	topK     int
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.Fragment, error) {
	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: %d vectors for one query", domain.ErrEmbeddingService, len(vectors))
	}
	return r.store.Search(ctx, vectors[0], r.topK)
}

// Combine concatenates fragment texts in retrieval order, separated by
// blank lines. maxChars truncates at a fragment boundary; 0 disables
// the cap.
func Combine(fragments []domain.Fragment, maxChars int) string {
	var b strings.Builder
	for i, f := range fragments {
		sep := 0
		if i > 0 {
			sep = 2
		}
		if maxChars > 0 && b.Len() > 0 && b.Len()+sep+len(f.Text) > maxChars {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(f.Text)
	}
	return b.String()
}
