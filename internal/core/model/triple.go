package model

import "strings"

// Triple is a directed labeled edge candidate extracted from text.
type Triple struct {
	Head       string `json:"head"`
	Relation   string `json:"relation"`
	Tail       string `json:"tail"`
	Source     string `json:"source,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (t Triple) Normalize() Triple {
	t.Head = strings.TrimSpace(t.Head)
	t.Relation = strings.TrimSpace(t.Relation)
	t.Tail = strings.TrimSpace(t.Tail)
	return t
}

// Valid reports whether all three fields are non-empty after trimming.
// Invalid candidates are rejected before they reach the graph.
func (t Triple) Valid() bool {
	n := t.Normalize()
	return n.Head != "" && n.Relation != "" && n.Tail != ""
}

// Chunk is a contiguous span of document text, processed independently
// by the extractor and discarded afterwards.
type Chunk struct {
	Index    int
	Text     string
	Document string
}

// ChunkExtraction is the tagged outcome of extracting one chunk: either
// a (possibly empty) set of parsed triples, or an unparsed record with
// the raw response and the reason. Untyped LLM output never crosses
// this boundary.
type ChunkExtraction struct {
	ChunkIndex int
	Triples    []Triple
	Rejected   int
	Unparsed   bool
	Reason     string
	Raw        string
}
