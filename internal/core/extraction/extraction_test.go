package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papergraph/internal/config"
	"github.com/agenthands/papergraph/internal/core/model"
)

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ChunkSize:     15000,
		MaxRetries:    3,
		BackoffBaseMS: 1, // keep retry tests fast
		MinChunkChars: 10,
	}
}

func TestExtractChunk(t *testing.T) {
	mockLLM := &MockClient{
		Default: `{"triples": [
			{"head": "AlphaFold", "relation": "predicts", "tail": "protein structure"},
			{"head": "AlphaFold", "relation": "developed by", "tail": "DeepMind"}
		]}`,
	}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	chunk := model.Chunk{Index: 3, Text: "AlphaFold predicts protein structures.", Document: "paper.pdf"}
	out := extractor.ExtractChunk(context.Background(), chunk, "Computational Biology")

	assert.False(t, out.Unparsed)
	require.Len(t, out.Triples, 2)
	assert.Equal(t, "AlphaFold", out.Triples[0].Head)
	assert.Equal(t, 3, out.Triples[0].ChunkIndex)
	assert.Equal(t, "paper.pdf", out.Triples[0].Source)

	// The prompt carries both the domain and the chunk text.
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "Computational Biology")
	assert.Contains(t, mockLLM.Prompts[0], chunk.Text)
}

func TestExtractChunkRejectsInvalidCandidates(t *testing.T) {
	mockLLM := &MockClient{
		Default: `{"triples": [
			{"head": "A", "relation": "r", "tail": "B"},
			{"head": "  ", "relation": "r", "tail": "B"},
			{"head": "A", "relation": "", "tail": "C"}
		]}`,
	}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "d")

	assert.False(t, out.Unparsed)
	assert.Len(t, out.Triples, 1)
	assert.Equal(t, 2, out.Rejected)
}

func TestExtractChunkRecordsUnparsedResponse(t *testing.T) {
	mockLLM := &MockClient{Default: "I cannot produce structured output for this text."}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Index: 7, Text: "long enough text here"}, "d")

	assert.True(t, out.Unparsed)
	assert.Equal(t, 7, out.ChunkIndex)
	assert.NotEmpty(t, out.Reason)
	assert.Contains(t, out.Raw, "structured output")
	assert.Empty(t, out.Triples)
}

func TestExtractChunkSkipsTinyChunks(t *testing.T) {
	mockLLM := &MockClient{Default: `{"triples": []}`}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "tiny"}, "d")

	assert.False(t, out.Unparsed)
	assert.Empty(t, out.Triples)
	assert.Empty(t, mockLLM.Prompts, "no LLM call for sub-threshold chunks")
}

// TestExtractChunkRetriesTransientErrors verifies that rate limits are
// retried and the chunk still succeeds once the model recovers.
func TestExtractChunkRetriesTransientErrors(t *testing.T) {
	mockLLM := &MockClient{
		Script: []MockStep{
			{Err: errors.New("429 rate limit exceeded")},
			{Err: errors.New("503 service unavailable")},
			{Response: `{"triples": [{"head": "A", "relation": "r", "tail": "B"}]}`},
		},
	}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "d")

	assert.False(t, out.Unparsed)
	assert.Len(t, out.Triples, 1)
	assert.Len(t, mockLLM.Prompts, 3)
}

func TestExtractChunkPermanentErrorFailsImmediately(t *testing.T) {
	mockLLM := &MockClient{
		Script: []MockStep{
			{Err: errors.New("invalid api key")},
			{Response: `{"triples": [{"head": "A", "relation": "r", "tail": "B"}]}`},
		},
	}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "d")

	assert.True(t, out.Unparsed)
	assert.Contains(t, out.Reason, "generation failed")
	assert.Len(t, mockLLM.Prompts, 1, "permanent errors must not be retried")
}

func TestExtractChunkExhaustsRetries(t *testing.T) {
	mockLLM := &MockClient{Script: nil}
	for i := 0; i < 10; i++ {
		mockLLM.Script = append(mockLLM.Script, MockStep{Err: errors.New("timeout")})
	}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "d")

	assert.True(t, out.Unparsed)
	// Initial attempt plus MaxRetries.
	assert.Len(t, mockLLM.Prompts, 4)
}

func TestDetectDomain(t *testing.T) {
	mockLLM := &MockClient{Default: `"Molecular Biology"`}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	domain := extractor.DetectDomain(context.Background(), "A study of CRISPR gene editing in bacteria.")

	assert.Equal(t, "Molecular Biology", domain)
}

func TestDetectDomainFallsBackOnError(t *testing.T) {
	mockLLM := &MockClient{Script: []MockStep{{Err: errors.New("invalid request")}}}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	domain := extractor.DetectDomain(context.Background(), "Some document text.")

	assert.Equal(t, UnknownDomain, domain)
}

func TestDetectDomainRejectsRambling(t *testing.T) {
	mockLLM := &MockClient{Default: "The domain appears to be:\nBiology\nwith some caveats"}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	domain := extractor.DetectDomain(context.Background(), "Some document text.")

	assert.Equal(t, UnknownDomain, domain)
}

func TestDetectDomainTruncatesPreview(t *testing.T) {
	mockLLM := &MockClient{Default: "Physics"}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	extractor.DetectDomain(context.Background(), strings.Repeat("a", 5000))

	require.Len(t, mockLLM.Prompts, 1)
	assert.Less(t, len(mockLLM.Prompts[0]), 2000)
}

func TestDetectDomainTruncatesOnRuneBoundary(t *testing.T) {
	mockLLM := &MockClient{Default: "Physik"}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	// Multibyte text longer than the preview cap must not be cut
	// mid-sequence.
	extractor.DetectDomain(context.Background(), strings.Repeat("Überdrüss ", 200))

	require.Len(t, mockLLM.Prompts, 1)
	assert.True(t, utf8.ValidString(mockLLM.Prompts[0]))
}

func TestExtractChunkKeepsRawValidUTF8(t *testing.T) {
	mockLLM := &MockClient{Default: strings.Repeat("kein strukturiertes Ergebnis für diesen Abschnitt ", 60)}
	extractor := NewExtractor(mockLLM, testConfig(), config.PromptOverrides{})

	out := extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "d")

	require.True(t, out.Unparsed)
	assert.True(t, utf8.ValidString(out.Raw))
	assert.LessOrEqual(t, len([]rune(out.Raw)), 2000)
}

func TestPromptOverrides(t *testing.T) {
	mockLLM := &MockClient{Default: `{"triples": []}`}
	overrides := config.PromptOverrides{Extraction: "custom %[1]s :: %[2]s"}
	extractor := NewExtractor(mockLLM, testConfig(), overrides)

	extractor.ExtractChunk(context.Background(), model.Chunk{Text: "long enough text here"}, "Chemistry")

	require.Len(t, mockLLM.Prompts, 1)
	assert.Equal(t, "custom Chemistry :: long enough text here", mockLLM.Prompts[0])
}
