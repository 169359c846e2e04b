package topic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papergraph/internal/core/model"
)

type fakeSampler struct {
	triples []model.Triple
	err     error
}

func (f *fakeSampler) Sample(ctx context.Context, sessionID string, limit int) ([]model.Triple, error) {
	return f.triples, f.err
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func clusterTriples() []model.Triple {
	return []model.Triple{
		triple("CRISPR", "edits", "DNA"),
		triple("Cas9", "part of", "CRISPR"),
		triple("DNA", "encodes", "Cas9"),
	}
}

func TestSuggest(t *testing.T) {
	sampler := &fakeSampler{triples: clusterTriples()}
	llm := &fakeLLM{response: `"Gene Editing Mechanisms"`}

	s := NewSuggester(sampler, llm)
	topics, err := s.Suggest(context.Background(), "s1", 5)

	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Gene Editing Mechanisms", topics[0])

	// The naming prompt includes the cluster's triples.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "CRISPR")
}

// TestSuggestFallsBackToMembers: naming failures degrade to the
// cluster's hub entities instead of dropping the suggestion.
func TestSuggestFallsBackToMembers(t *testing.T) {
	sampler := &fakeSampler{triples: clusterTriples()}
	llm := &fakeLLM{err: errors.New("quota exceeded")}

	s := NewSuggester(sampler, llm)
	topics, err := s.Suggest(context.Background(), "s1", 5)

	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Contains(t, topics[0], " / ")
	assert.Contains(t, topics[0], "CRISPR")
}

func TestSuggestEmptyGraph(t *testing.T) {
	s := NewSuggester(&fakeSampler{}, &fakeLLM{})

	topics, err := s.Suggest(context.Background(), "s1", 5)

	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestSuggestSamplerError(t *testing.T) {
	s := NewSuggester(&fakeSampler{err: errors.New("connection refused")}, &fakeLLM{})

	_, err := s.Suggest(context.Background(), "s1", 5)

	assert.Error(t, err)
}

func TestSuggestCapsTopics(t *testing.T) {
	// Three separate pairs yield three communities; max 2 keeps two.
	sampler := &fakeSampler{triples: []model.Triple{
		triple("A", "r", "B"),
		triple("C", "r", "D"),
		triple("E", "r", "F"),
	}}
	llm := &fakeLLM{response: "Topic"}

	s := NewSuggester(sampler, llm)
	topics, err := s.Suggest(context.Background(), "s1", 2)

	require.NoError(t, err)
	assert.Len(t, topics, 2)
}
