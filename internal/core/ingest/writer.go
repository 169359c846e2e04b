package ingest

import (
	"context"
	"fmt"

	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/driver"
)

// Writer upserts validated triples into the graph store. Writes are
// idempotent: MERGE keys on entity name and relation type, so repeating
// a batch matches existing nodes and edges instead of duplicating them.
type Writer struct {
	driver    driver.GraphDriver
	batchSize int
}

func NewWriter(d driver.GraphDriver, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Writer{driver: d, batchSize: batchSize}
}

// WriteTriples upserts the triples in batches. On a store failure the
// returned result still reports the batches already committed; no
// rollback is attempted (the store commits per call). Created counts
// come from node/edge counts taken before and after the run; matched
// counts are the distinct submitted labels minus the created ones.
func (w *Writer) WriteTriples(ctx context.Context, sessionID string, triples []model.Triple) (model.WriteResult, error) {
	var res model.WriteResult
	if len(triples) == 0 {
		return res, nil
	}

	valid := make([]model.Triple, 0, len(triples))
	for _, t := range triples {
		if t.Valid() {
			valid = append(valid, t.Normalize())
		}
	}
	if len(valid) == 0 {
		return res, nil
	}

	distinctNodes, distinctEdges := distinct(valid)

	nodesBefore, err := w.count(ctx, driver.NodeCountQuery, sessionID)
	if err != nil {
		return res, fmt.Errorf("store unreachable before write: %w", err)
	}
	edgesBefore, err := w.count(ctx, driver.EdgeCountQuery, sessionID)
	if err != nil {
		return res, fmt.Errorf("store unreachable before write: %w", err)
	}

	totalBatches := (len(valid) + w.batchSize - 1) / w.batchSize
	for i := 0; i < len(valid); i += w.batchSize {
		end := i + w.batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[i:end]

		rows := make([]map[string]interface{}, 0, len(batch))
		for _, t := range batch {
			rows = append(rows, map[string]interface{}{
				"head":     t.Head,
				"relation": t.Relation,
				"tail":     t.Tail,
				"source":   t.Source,
			})
		}

		params := map[string]interface{}{
			"triples":    rows,
			"session_id": sessionID,
		}
		if _, err := w.driver.ExecuteQuery(ctx, driver.ImportTriplesQuery, params); err != nil {
			// Committed batches stay committed; report how far we got.
			return res, fmt.Errorf("batch %d/%d failed: %w", res.BatchesCommitted+1, totalBatches, err)
		}

		res.BatchesCommitted++
		res.TriplesWritten += len(batch)
	}

	nodesAfter, err := w.count(ctx, driver.NodeCountQuery, sessionID)
	if err != nil {
		golog.Warnf("post-write node count failed: %v", err)
		return res, nil
	}
	edgesAfter, err := w.count(ctx, driver.EdgeCountQuery, sessionID)
	if err != nil {
		golog.Warnf("post-write edge count failed: %v", err)
		return res, nil
	}

	res.NodesCreated = clampNonNegative(int(nodesAfter - nodesBefore))
	res.EdgesCreated = clampNonNegative(int(edgesAfter - edgesBefore))
	res.NodesMatched = clampNonNegative(distinctNodes - res.NodesCreated)
	res.EdgesMatched = clampNonNegative(distinctEdges - res.EdgesCreated)

	return res, nil
}

func (w *Writer) count(ctx context.Context, query, sessionID string) (int64, error) {
	result, err := w.driver.ExecuteQuery(ctx, query, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	value, ok := result.Records[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("count query returned no 'count' column")
	}
	n, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", value)
	}
	return n, nil
}

// distinct returns how many unique entity labels and unique
// (head, relation, tail) edges the triple set contains.
func distinct(triples []model.Triple) (int, int) {
	nodes := make(map[string]struct{})
	edges := make(map[model.Triple]struct{})
	for _, t := range triples {
		nodes[t.Head] = struct{}{}
		nodes[t.Tail] = struct{}{}
		edges[model.Triple{Head: t.Head, Relation: t.Relation, Tail: t.Tail}] = struct{}{}
	}
	return len(nodes), len(edges)
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
