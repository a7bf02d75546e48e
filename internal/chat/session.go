// Package chat implements the query-time pipeline: rewrite the user's
// question into a standalone one, retrieve relevant fragments, and
// generate a grounded answer with conversation history in the prompt.
package chat

import (
	"context"

	"ragchat/internal/domain"
	"ragchat/internal/history"
	"ragchat/internal/prompt"
)

// FallbackMessage is the only text shown to the user when any pipeline
// stage fails. The underlying error goes to the log instead.
const FallbackMessage = "Sorry, I'm having trouble connecting. Please try again later."

// Options bound the prompt inputs. Zero values fall back to defaults;
// a negative HistoryTurns or MaxContextChars disables that cap.
type Options struct {
	TopK            int
	HistoryTurns    int
	MaxContextChars int
}

// Session owns one conversation. History is append-only, in-memory,
// and exclusively owned: sessions never share state, so independent
// sessions can run concurrently without locking. A single session runs
// one submission at a time, enforced by the UI.
type Session struct {
	rewriter        *Rewriter
	retriever       *Retriever
	llm             domain.LLM
	historyTurns    int
	maxContextChars int
	turns           []domain.Turn
}

func NewSession(llm domain.LLM, embedder domain.Embedder, store domain.VectorStore, opts Options) *Session {
	historyTurns := opts.HistoryTurns
	if historyTurns == 0 {
		historyTurns = 8
	}
	maxContextChars := opts.MaxContextChars
	if maxContextChars == 0 {
		maxContextChars = 8000
	}
	return &Session{
		rewriter:        NewRewriter(llm),
		retriever:       NewRetriever(embedder, store, opts.TopK),
		llm:             llm,
		historyTurns:    historyTurns,
		maxContextChars: maxContextChars,
	}
}

// Ask runs the full pipeline for one question. On success the user and
// assistant turns are appended to the session history; on any stage
// failure the error is returned and the history is left untouched, so
// a later rewrite never sees a failed exchange.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	historyText := history.Format(history.Window(s.turns, s.historyTurns))

	standalone, err := s.rewriter.Rewrite(ctx, question, historyText)
	if err != nil {
		return "", err
	}
	fragments, err := s.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return "", err
	}
	contextBlock := Combine(fragments, s.maxContextChars)

	p, err := prompt.Answer.Render(map[string]string{
		"context":      contextBlock,
		"conv_history": historyText,
		"question":     question,
	})
	if err != nil {
		return "", err
	}
	answer, err := s.llm.Complete(ctx, p)
	if err != nil {
		return "", err
	}

	s.turns = append(s.turns,
		domain.Turn{Role: domain.RoleUser, Text: question},
		domain.Turn{Role: domain.RoleAssistant, Text: answer},
	)
	return answer, nil
}

// History returns a copy of the session's turns.
func (s *Session) History() []domain.Turn {
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
