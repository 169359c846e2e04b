package model

// Progress is emitted after every processed chunk.
type Progress struct {
	ChunksProcessed int `json:"chunks_processed"`
	ChunksTotal     int `json:"chunks_total"`
	TriplesFound    int `json:"triples_found"`
	ChunksFailed    int `json:"chunks_failed"`
}

type RunStatus string

const (
	// StatusEmpty means no data was extracted: empty input or every
	// chunk failed. Callers must not mistake this for success.
	StatusEmpty RunStatus = "empty"
	// StatusPartial means some chunks failed but triples were written.
	StatusPartial RunStatus = "partial"
	// StatusComplete means every chunk was processed successfully.
	StatusComplete RunStatus = "complete"
	// StatusFailed means the graph write aborted before completion.
	StatusFailed RunStatus = "failed"
)

// Summary is the final report for a document run.
type Summary struct {
	Document         string    `json:"document"`
	Domain           string    `json:"domain,omitempty"`
	Status           RunStatus `json:"status"`
	ChunksTotal      int       `json:"chunks_total"`
	ChunksFailed     int       `json:"chunks_failed"`
	TriplesExtracted int       `json:"triples_extracted"`
	TriplesRejected  int       `json:"triples_rejected"`
	TriplesWritten   int       `json:"triples_written"`
	NodesCreated     int       `json:"nodes_created"`
	NodesMatched     int       `json:"nodes_matched"`
	EdgesCreated     int       `json:"edges_created"`
	EdgesMatched     int       `json:"edges_matched"`
	BatchesCommitted int       `json:"batches_committed"`
	FatalError       string    `json:"fatal_error,omitempty"`
}

// WriteResult reports what an ingest run did to the store.
type WriteResult struct {
	TriplesWritten   int
	NodesCreated     int
	NodesMatched     int
	EdgesCreated     int
	EdgesMatched     int
	BatchesCommitted int
}

type RelationTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type GraphStats struct {
	Nodes         int64               `json:"nodes"`
	Relationships int64               `json:"relationships"`
	RelationTypes []RelationTypeCount `json:"relation_types"`
}

// EntityConnection is one row of a neighborhood lookup.
type EntityConnection struct {
	Entity   string `json:"entity"`
	Distance int64  `json:"distance"`
}

// EntityDegree is one row of a top-entities lookup.
type EntityDegree struct {
	Name   string `json:"name"`
	Degree int64  `json:"degree"`
}
