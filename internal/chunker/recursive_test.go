package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"ragchat/internal/domain"
)

func defaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// reconstruct re-assembles the original text by stripping each chunk's
// overlap prefix, whose length follows from the next chunk's offset.
func reconstruct(t *testing.T, original string, c *Recursive) string {
	t.Helper()
	chunks := c.Split(original)
	var b strings.Builder
	for i, ch := range chunks {
		end := len(original)
		if i+1 < len(chunks) {
			end = chunks[i+1].SourceOffset
		}
		owned := end - ch.SourceOffset
		if owned < 0 || owned > len(ch.Text) {
			t.Fatalf("chunk %d: owned length %d out of range for %q", i, owned, ch.Text)
		}
		b.WriteString(ch.Text[len(ch.Text)-owned:])
	}
	return b.String()
}

func TestSplitEmptyInput(t *testing.T) {
	c := NewRecursive(Config{ChunkSize: 10, Separators: defaultSeparators()})
	if got := c.Split(""); got != nil {
		t.Errorf("expected no chunks for empty input, got %v", got)
	}
}

func TestSplitParagraphBoundaries(t *testing.T) {
	c := NewRecursive(Config{ChunkSize: 10, ChunkOverlap: 0, Separators: defaultSeparators()})
	chunks := c.Split("A.\n\nB.")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if strings.TrimSpace(chunks[0].Text) != "A." || strings.TrimSpace(chunks[1].Text) != "B." {
		t.Errorf("unexpected chunk texts: %q, %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[0].SequenceIndex != 0 || chunks[1].SequenceIndex != 1 {
		t.Errorf("sequence indices not ordered: %+v", chunks)
	}
	if chunks[1].SourceOffset != 4 {
		t.Errorf("second chunk offset = %d, want 4", chunks[1].SourceOffset)
	}
}

func TestSplitSizeBound(t *testing.T) {
	texts := []string{
		"one two three four five six seven eight nine ten",
		"line one\nline two\nline three\n\npara two here",
		strings.Repeat("word ", 40),
		"short",
	}
	c := NewRecursive(Config{ChunkSize: 12, ChunkOverlap: 4, Separators: defaultSeparators()})
	for _, text := range texts {
		for _, ch := range c.Split(text) {
			if len(ch.Text) > 12 {
				t.Errorf("chunk exceeds size: %q (%d bytes)", ch.Text, len(ch.Text))
			}
		}
	}
}

func TestSplitOversizedAtomicWord(t *testing.T) {
	// No separator below the word level: the word stays whole when only
	// coarse separators are configured, and is char-split when the empty
	// separator is available.
	long := strings.Repeat("x", 30)
	coarse := NewRecursive(Config{ChunkSize: 10, Separators: []string{"\n\n", " "}})
	chunks := coarse.Split("a " + long)
	found := false
	for _, ch := range chunks {
		if ch.Text == long {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the atomic oversized word as its own chunk, got %v", chunks)
	}

	fine := NewRecursive(Config{ChunkSize: 10, Separators: defaultSeparators()})
	for _, ch := range fine.Split(long) {
		if len(ch.Text) > 10 {
			t.Errorf("char-level fallback produced oversized chunk %q", ch.Text)
		}
	}
}

func TestSplitLosslessReconstruction(t *testing.T) {
	texts := []string{
		"A.\n\nB.",
		"one two three four five six seven eight nine ten",
		"first paragraph with some words\n\nsecond paragraph\nwith a line break\n\nthird",
		strings.Repeat("abc def ghi jkl ", 20),
		"no separators at all but short",
	}
	for _, overlap := range []int{0, 5} {
		c := NewRecursive(Config{ChunkSize: 16, ChunkOverlap: overlap, Separators: defaultSeparators()})
		for _, text := range texts {
			if got := reconstruct(t, text, c); got != text {
				t.Errorf("overlap=%d: reconstruction mismatch\n got %q\nwant %q", overlap, got, text)
			}
		}
	}
}

func TestSplitOverlapPrefix(t *testing.T) {
	c := NewRecursive(Config{ChunkSize: 6, ChunkOverlap: 2, Separators: defaultSeparators()})
	chunks := c.Split("aaaa bbbb cccc")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		ovLen := len(chunks[i].Text) - lenOwned(chunks, i, 14)
		if ovLen == 0 {
			continue
		}
		if !strings.HasSuffix(prev, chunks[i].Text[:ovLen]) {
			t.Errorf("chunk %d overlap %q is not a suffix of previous chunk %q", i, chunks[i].Text[:ovLen], prev)
		}
	}
}

func lenOwned(chunks []domain.Chunk, i, total int) int {
	end := total
	if i+1 < len(chunks) {
		end = chunks[i+1].SourceOffset
	}
	return end - chunks[i].SourceOffset
}

func TestSplitOverlapKeepsValidUTF8(t *testing.T) {
	c := NewRecursive(Config{ChunkSize: 10, ChunkOverlap: 3, Separators: defaultSeparators()})
	texts := []string{
		"aééé\naééé\naééé",
		"héllo wörld hére ägain ünd wéiter",
		strings.Repeat("日本語テキスト ", 5),
	}
	for _, text := range texts {
		for i, ch := range c.Split(text) {
			if !utf8.ValidString(ch.Text) {
				t.Errorf("chunk %d of %q is not valid UTF-8: %q", i, text, ch.Text)
			}
		}
		if got := reconstruct(t, text, c); got != text {
			t.Errorf("reconstruction mismatch for %q: got %q", text, got)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 10)
	c := NewRecursive(Config{ChunkSize: 50, ChunkOverlap: 10, Separators: defaultSeparators()})
	first := c.Split(text)
	for i := 0; i < 3; i++ {
		if !reflect.DeepEqual(first, c.Split(text)) {
			t.Fatal("split is not deterministic")
		}
	}
}
