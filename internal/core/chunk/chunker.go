package chunk

import (
	"strings"

	"github.com/agenthands/papergraph/internal/core/model"
)

// Config controls the chunking behaviour.
type Config struct {
	MaxChars int // Maximum characters per chunk.
	Overlap  int // Characters of trailing context repeated at the start of the next chunk.
}

// Chunker splits document text into bounded, ordered chunks. Chunks are
// contiguous substrings of the input: concatenating them (minus the
// configured overlap) reproduces the original text exactly.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration. Zero-value fields
// are replaced with defaults.
func New(cfg Config) *Chunker {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 15000
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	// Chunks are always at least half of MaxChars long, so capping the
	// overlap at a quarter guarantees it never reaches back past the
	// previous chunk's start.
	if cfg.Overlap > cfg.MaxChars/4 {
		cfg.Overlap = cfg.MaxChars / 4
	}
	return &Chunker{cfg: cfg}
}

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int {
	return c.cfg.Overlap
}

// Split divides text into ordered chunks of at most MaxChars characters
// each, cutting at paragraph, then sentence, then word boundaries where
// possible. It is a pure function: calling it twice yields the same
// sequence. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Split(document, text string) []model.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []model.Chunk

	start := 0
	for start < len(runes) {
		end := start + c.cfg.MaxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		lo := start
		if len(chunks) > 0 && c.cfg.Overlap > 0 {
			lo = start - c.cfg.Overlap
			if lo < 0 {
				lo = 0
			}
		}

		chunks = append(chunks, model.Chunk{
			Index:    len(chunks),
			Text:     string(runes[lo:end]),
			Document: document,
		})
		start = end
	}

	return chunks
}

// cutPoint finds the best split position in (start, limit]: the last
// paragraph break, failing that the last sentence end, failing that the
// last space. Candidates in the first half of the window are ignored so
// chunks stay reasonably full. A hard cut at limit is the final resort,
// which only happens inside pathologically long unbroken runs.
func cutPoint(runes []rune, start, limit int) int {
	floor := start + (limit-start)/2

	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	for i := limit - 1; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && (runes[i] == ' ' || runes[i] == '\n') {
			return i + 1
		}
	}

	for i := limit - 1; i > floor; i-- {
		if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Reassemble concatenates a chunk sequence back into the original text,
// dropping the leading overlap of every chunk after the first.
func Reassemble(chunks []model.Chunk, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		text := ch.Text
		if i > 0 && overlap > 0 {
			runes := []rune(text)
			if len(runes) > overlap {
				text = string(runes[overlap:])
			} else {
				text = ""
			}
		}
		b.WriteString(text)
	}
	return b.String()
}
