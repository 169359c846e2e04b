package core

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/driver"
)

// Stats returns node/edge counts and the most common relation types
// for a session.
func (p *Pipeline) Stats(ctx context.Context, sessionID string) (model.GraphStats, error) {
	var stats model.GraphStats
	params := map[string]interface{}{"session_id": sessionID}

	result, err := p.Driver.ExecuteQuery(ctx, driver.NodeCountQuery, params)
	if err != nil {
		return stats, err
	}
	stats.Nodes = singleCount(result.Records, "count")

	result, err = p.Driver.ExecuteQuery(ctx, driver.EdgeCountQuery, params)
	if err != nil {
		return stats, err
	}
	stats.Relationships = singleCount(result.Records, "count")

	result, err = p.Driver.ExecuteQuery(ctx, driver.RelationTypesQuery, params)
	if err != nil {
		return stats, err
	}
	for _, rec := range result.Records {
		relType, _ := rec.Get("rel_type")
		count, _ := rec.Get("count")
		name, ok := relType.(string)
		if !ok {
			continue
		}
		n, _ := count.(int64)
		stats.RelationTypes = append(stats.RelationTypes, model.RelationTypeCount{
			Type:  name,
			Count: n,
		})
	}

	return stats, nil
}

// Sample returns up to limit triples from the session's graph, for
// visualization and topic mining.
func (p *Pipeline) Sample(ctx context.Context, sessionID string, limit int) ([]model.Triple, error) {
	if limit <= 0 {
		limit = 100
	}
	result, err := p.Driver.ExecuteQuery(ctx, driver.GraphSampleQuery, map[string]interface{}{
		"session_id": sessionID,
		"limit":      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	var triples []model.Triple
	for _, rec := range result.Records {
		head, _ := rec.Get("head")
		relation, _ := rec.Get("relation")
		tail, _ := rec.Get("tail")

		t := model.Triple{}
		if s, ok := head.(string); ok {
			t.Head = s
		}
		if s, ok := relation.(string); ok {
			t.Relation = s
		}
		if s, ok := tail.(string); ok {
			t.Tail = s
		}
		if t.Valid() {
			triples = append(triples, t)
		}
	}
	return triples, nil
}

// TopEntities returns the session's most connected entities, ordered
// by degree.
func (p *Pipeline) TopEntities(ctx context.Context, sessionID string, limit int) ([]model.EntityDegree, error) {
	if limit <= 0 {
		limit = 10
	}
	result, err := p.Driver.ExecuteQuery(ctx, driver.TopEntitiesQuery, map[string]interface{}{
		"session_id": sessionID,
		"limit":      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	var entities []model.EntityDegree
	for _, rec := range result.Records {
		name, _ := rec.Get("name")
		degree, _ := rec.Get("degree")
		s, ok := name.(string)
		if !ok {
			continue
		}
		d, _ := degree.(int64)
		entities = append(entities, model.EntityDegree{Name: s, Degree: d})
	}
	return entities, nil
}

// Connections returns entities reachable from the named entity within
// the given traversal depth.
func (p *Pipeline) Connections(ctx context.Context, sessionID, entity string, depth, limit int) ([]model.EntityConnection, error) {
	if limit <= 0 {
		limit = 50
	}
	result, err := p.Driver.ExecuteQuery(ctx, driver.ConnectionsQuery(depth), map[string]interface{}{
		"session_id":  sessionID,
		"entity_name": entity,
		"limit":       int64(limit),
	})
	if err != nil {
		return nil, err
	}

	var connections []model.EntityConnection
	for _, rec := range result.Records {
		name, _ := rec.Get("entity")
		distance, _ := rec.Get("distance")
		s, ok := name.(string)
		if !ok {
			continue
		}
		d, _ := distance.(int64)
		connections = append(connections, model.EntityConnection{Entity: s, Distance: d})
	}
	return connections, nil
}

// ClearSession removes every node and relationship tagged with the
// session id.
func (p *Pipeline) ClearSession(ctx context.Context, sessionID string) error {
	_, err := p.Driver.ExecuteQuery(ctx, driver.ClearSessionQuery, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}

// CleanupOlderThan deletes entities from sessions abandoned longer ago
// than the given age, returning how many nodes were removed.
func (p *Pipeline) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UnixMilli()
	result, err := p.Driver.ExecuteQuery(ctx, driver.CleanupOldQuery, map[string]interface{}{
		"cutoff": cutoff,
	})
	if err != nil {
		return 0, err
	}
	return singleCount(result.Records, "deleted"), nil
}

func singleCount(records []*neo4j.Record, key string) int64 {
	if len(records) == 0 {
		return 0
	}
	value, ok := records[0].Get(key)
	if !ok {
		return 0
	}
	n, _ := value.(int64)
	return n
}
