package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/driver"
)

type call struct {
	query  string
	params map[string]interface{}
}

// MockDriver replies to count queries from a scripted queue of values
// and lets a specific import batch be failed.
type MockDriver struct {
	Counts      []int64 // consumed in order by count queries
	FailOnBatch int     // 1-based batch number to fail, 0 = never
	BatchErr    error

	Calls   []call
	batches int
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Calls = append(m.Calls, call{query: query, params: params})

	if query == driver.NodeCountQuery || query == driver.EdgeCountQuery {
		var n int64
		if len(m.Counts) > 0 {
			n = m.Counts[0]
			m.Counts = m.Counts[1:]
		}
		return neo4j.EagerResult{
			Keys:    []string{"count"},
			Records: []*neo4j.Record{{Keys: []string{"count"}, Values: []interface{}{n}}},
		}, nil
	}

	m.batches++
	if m.FailOnBatch > 0 && m.batches == m.FailOnBatch {
		err := m.BatchErr
		if err == nil {
			err = errors.New("connection reset by peer")
		}
		return neo4j.EagerResult{}, err
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func (m *MockDriver) importCalls() []call {
	var out []call
	for _, c := range m.Calls {
		if c.query == driver.ImportTriplesQuery {
			out = append(out, c)
		}
	}
	return out
}

func TestWriteTriples(t *testing.T) {
	// Before: empty graph. After: 3 nodes, 2 edges.
	mock := &MockDriver{Counts: []int64{0, 0, 3, 2}}
	writer := NewWriter(mock, 200)

	triples := []model.Triple{
		{Head: "A", Relation: "r1", Tail: "B", Source: "doc.pdf"},
		{Head: "B", Relation: "r2", Tail: "C", Source: "doc.pdf"},
	}
	res, err := writer.WriteTriples(context.Background(), "session-1", triples)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TriplesWritten)
	assert.Equal(t, 1, res.BatchesCommitted)
	assert.Equal(t, 3, res.NodesCreated)
	assert.Equal(t, 2, res.EdgesCreated)
	assert.Equal(t, 0, res.NodesMatched)
	assert.Equal(t, 0, res.EdgesMatched)

	imports := mock.importCalls()
	require.Len(t, imports, 1)
	assert.Equal(t, "session-1", imports[0].params["session_id"])
	rows := imports[0].params["triples"].([]map[string]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0]["head"])
	assert.Equal(t, "doc.pdf", rows[0]["source"])
}

// TestWriteTriplesRepeatMatchesExisting covers the idempotence
// accounting: resubmitting triples already in the graph reports them
// as matched, not created.
func TestWriteTriplesRepeatMatchesExisting(t *testing.T) {
	// Graph already holds the 3 nodes and 2 edges; counts do not move.
	mock := &MockDriver{Counts: []int64{3, 2, 3, 2}}
	writer := NewWriter(mock, 200)

	triples := []model.Triple{
		{Head: "A", Relation: "r1", Tail: "B"},
		{Head: "B", Relation: "r2", Tail: "C"},
	}
	res, err := writer.WriteTriples(context.Background(), "session-1", triples)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TriplesWritten)
	assert.Equal(t, 0, res.NodesCreated)
	assert.Equal(t, 0, res.EdgesCreated)
	assert.Equal(t, 3, res.NodesMatched)
	assert.Equal(t, 2, res.EdgesMatched)
}

func TestWriteTriplesFiltersInvalid(t *testing.T) {
	mock := &MockDriver{}
	writer := NewWriter(mock, 200)

	res, err := writer.WriteTriples(context.Background(), "s", []model.Triple{
		{Head: "", Relation: "r", Tail: "B"},
		{Head: "A", Relation: "  ", Tail: "B"},
	})

	require.NoError(t, err)
	assert.Zero(t, res.TriplesWritten)
	assert.Empty(t, mock.Calls, "nothing valid to write, store untouched")
}

func TestWriteTriplesEmptyInput(t *testing.T) {
	mock := &MockDriver{}
	writer := NewWriter(mock, 200)

	res, err := writer.WriteTriples(context.Background(), "s", nil)

	require.NoError(t, err)
	assert.Zero(t, res.TriplesWritten)
	assert.Empty(t, mock.Calls)
}

func TestWriteTriplesBatching(t *testing.T) {
	mock := &MockDriver{Counts: []int64{0, 0, 5, 5}}
	writer := NewWriter(mock, 2)

	var triples []model.Triple
	for _, h := range []string{"A", "B", "C", "D", "E"} {
		triples = append(triples, model.Triple{Head: h, Relation: "r", Tail: h + "x"})
	}
	res, err := writer.WriteTriples(context.Background(), "s", triples)

	require.NoError(t, err)
	assert.Equal(t, 3, res.BatchesCommitted)
	assert.Equal(t, 5, res.TriplesWritten)

	imports := mock.importCalls()
	require.Len(t, imports, 3)
	assert.Len(t, imports[0].params["triples"], 2)
	assert.Len(t, imports[2].params["triples"], 1)
}

// TestWriteTriplesPartialFailure verifies that a mid-run store failure
// reports the batches that did commit; they are not rolled back.
func TestWriteTriplesPartialFailure(t *testing.T) {
	mock := &MockDriver{Counts: []int64{0, 0}, FailOnBatch: 2}
	writer := NewWriter(mock, 2)

	var triples []model.Triple
	for _, h := range []string{"A", "B", "C", "D", "E"} {
		triples = append(triples, model.Triple{Head: h, Relation: "r", Tail: h + "x"})
	}
	res, err := writer.WriteTriples(context.Background(), "s", triples)

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "batch 2/3"), "error names the failing batch: %v", err)
	assert.Equal(t, 1, res.BatchesCommitted)
	assert.Equal(t, 2, res.TriplesWritten)
}

func TestWriteTriplesStoreUnreachable(t *testing.T) {
	writer := NewWriter(&failingDriver{}, 200)

	_, err := writer.WriteTriples(context.Background(), "s", []model.Triple{
		{Head: "A", Relation: "r", Tail: "B"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable before write")
}

type failingDriver struct{}

func (f *failingDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return neo4j.EagerResult{}, errors.New("dial tcp: connection refused")
}
func (f *failingDriver) BuildIndices(ctx context.Context) error { return nil }
func (f *failingDriver) Close(ctx context.Context) error        { return nil }

func TestWriteTriplesNormalizesBeforeWrite(t *testing.T) {
	mock := &MockDriver{Counts: []int64{0, 0, 2, 1}}
	writer := NewWriter(mock, 200)

	_, err := writer.WriteTriples(context.Background(), "s", []model.Triple{
		{Head: "  Einstein ", Relation: " developed ", Tail: " Relativity  "},
	})

	require.NoError(t, err)
	rows := mock.importCalls()[0].params["triples"].([]map[string]interface{})
	assert.Equal(t, "Einstein", rows[0]["head"])
	assert.Equal(t, "developed", rows[0]["relation"])
	assert.Equal(t, "Relativity", rows[0]["tail"])
}
