package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papergraph/internal/core/model"
)

func TestRenderHTML(t *testing.T) {
	triples := []model.Triple{
		{Head: "CRISPR", Relation: "edits", Tail: "DNA"},
		{Head: "Cas9", Relation: "part of", Tail: "CRISPR"},
	}

	page, err := RenderHTML(triples, "Test Graph")

	require.NoError(t, err)
	assert.Contains(t, page, "<title>Test Graph</title>")
	assert.Contains(t, page, "vis-network")
	assert.Contains(t, page, "CRISPR")
	assert.Contains(t, page, "Cas9")
	assert.Contains(t, page, `"label":"edits"`)
}

func TestRenderHTMLDeduplicatesNodes(t *testing.T) {
	triples := []model.Triple{
		{Head: "CRISPR", Relation: "edits", Tail: "DNA"},
		{Head: "CRISPR", Relation: "discovered in", Tail: "bacteria"},
	}

	page, err := RenderHTML(triples, "")

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(page, `"label":"CRISPR"`))
}

func TestRenderHTMLSkipsInvalidTriples(t *testing.T) {
	triples := []model.Triple{
		{Head: "A", Relation: "", Tail: "B"},
		{Head: "A", Relation: "r", Tail: "C"},
	}

	page, err := RenderHTML(triples, "")

	require.NoError(t, err)
	assert.NotContains(t, page, `"label":"B"`)
	assert.Contains(t, page, `"label":"C"`)
}

func TestRenderHTMLEmptyGraph(t *testing.T) {
	page, err := RenderHTML(nil, "")

	require.NoError(t, err)
	assert.Contains(t, page, "<title>Knowledge Graph</title>")
	assert.Contains(t, page, "vis.Network")
}
