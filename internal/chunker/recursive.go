package chunker

import (
	"strings"
	"unicode/utf8"

	"ragchat/internal/domain"
)

// Recursive splits text into overlapping character-bounded chunks.
// It tries separators from coarsest to finest: pieces still larger than
// the chunk size are re-split with the next separator, the empty-string
// separator splitting per character as a last resort. Separators stay
// attached to the piece they terminate, so concatenating the produced
// chunks with overlaps removed yields the original text.
type Recursive struct {
	size       int
	overlap    int
	separators []string
}

// Config configures the recursive chunker. Sizes are in bytes.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewRecursive(cfg Config) *Recursive {
	size := cfg.ChunkSize
	if size <= 0 {
		size = 1000
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	seps := cfg.Separators
	if len(seps) == 0 {
		seps = []string{"\n\n", "\n", " ", ""}
	}
	return &Recursive{size: size, overlap: overlap, separators: seps}
}

// Split produces the chunk sequence for text. Same input and config
// always yields the same sequence; empty input yields no chunks.
func (c *Recursive) Split(text string) []domain.Chunk {
	if text == "" {
		return nil
	}
	var chunks []domain.Chunk
	pos := 0
	if c.separators[0] == "" {
		return c.mergeGroup(chunks, splitKeep(text, ""), &pos)
	}
	for _, top := range splitKeep(text, c.separators[0]) {
		group := []string{top}
		if len(top) > c.size {
			group = c.resplit(top, 1)
		}
		chunks = c.mergeGroup(chunks, group, &pos)
	}
	return chunks
}

// resplit breaks an oversized piece with progressively finer separators
// until every sub-piece fits. A piece that no separator can break is
// returned as-is, the sole case where a chunk may exceed the size.
func (c *Recursive) resplit(text string, sepIdx int) []string {
	if len(text) <= c.size || sepIdx >= len(c.separators) {
		return []string{text}
	}
	parts := splitKeep(text, c.separators[sepIdx])
	if len(parts) == 1 {
		return c.resplit(text, sepIdx+1)
	}
	var out []string
	for _, p := range parts {
		if len(p) > c.size {
			out = append(out, c.resplit(p, sepIdx+1)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeGroup greedily packs the group's pieces into chunks up to the
// chunk size. A chunk that starts after a previous one is prefixed with
// that chunk's trailing overlap, shortened when it would not fit.
func (c *Recursive) mergeGroup(chunks []domain.Chunk, group []string, pos *int) []domain.Chunk {
	cur := ""
	curStart := *pos
	hasOwned := false
	if len(chunks) > 0 {
		cur = c.tailOverlap(chunks[len(chunks)-1].Text, group[0])
	}
	flush := func() {
		if !hasOwned {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Text:          cur,
			SourceOffset:  curStart,
			SequenceIndex: len(chunks),
		})
	}
	for _, p := range group {
		if hasOwned && len(cur)+len(p) > c.size {
			flush()
			cur = c.tailOverlap(cur, p)
			hasOwned = false
		}
		if !hasOwned {
			curStart = *pos
			hasOwned = true
		}
		cur += p
		*pos += len(p)
	}
	flush()
	return chunks
}

// tailOverlap returns the suffix of prev carried into a chunk that will
// start with next, capped so overlap plus next stays within the size.
// The suffix always begins on a rune boundary so the chunk stays valid
// UTF-8.
func (c *Recursive) tailOverlap(prev, next string) string {
	ov := c.overlap
	if ov > len(prev) {
		ov = len(prev)
	}
	if max := c.size - len(next); ov > max {
		ov = max
	}
	if ov <= 0 {
		return ""
	}
	start := len(prev) - ov
	for start < len(prev) && !utf8.RuneStart(prev[start]) {
		start++
	}
	return prev[start:]
}

// splitKeep splits on sep keeping it attached to the left piece; the
// empty separator splits into individual runes.
func splitKeep(text, sep string) []string {
	if sep == "" {
		parts := make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
