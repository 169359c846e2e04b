package driver

import "fmt"

const (
	// ImportTriplesQuery upserts a batch of triples. MERGE keys on the
	// entity name plus session id, so re-importing the same batch is a
	// no-op: repeated writes match instead of creating duplicates.
	ImportTriplesQuery = `
		UNWIND $triples AS row
		MERGE (h:Entity {name: row.head, session_id: $session_id})
		ON CREATE SET h.created_at = timestamp()
		MERGE (t:Entity {name: row.tail, session_id: $session_id})
		ON CREATE SET t.created_at = timestamp()
		MERGE (h)-[r:RELATION {type: row.relation}]->(t)
		ON CREATE SET r.created_at = timestamp()
		SET r.session_id = $session_id,
			r.source = row.source
	`

	NodeCountQuery = `
		MATCH (n:Entity {session_id: $session_id})
		RETURN count(n) AS count
	`

	EdgeCountQuery = `
		MATCH (h:Entity {session_id: $session_id})-[r:RELATION]->(t:Entity {session_id: $session_id})
		RETURN count(r) AS count
	`

	RelationTypesQuery = `
		MATCH (h:Entity {session_id: $session_id})-[r:RELATION]->(t:Entity {session_id: $session_id})
		RETURN r.type AS rel_type, count(*) AS count
		ORDER BY count DESC
		LIMIT 10
	`

	GraphSampleQuery = `
		MATCH (h:Entity {session_id: $session_id})-[r:RELATION]->(t:Entity {session_id: $session_id})
		RETURN h.name AS head, r.type AS relation, t.name AS tail
		LIMIT $limit
	`

	TopEntitiesQuery = `
		MATCH (n:Entity {session_id: $session_id})-[r:RELATION]-()
		RETURN n.name AS name, count(r) AS degree
		ORDER BY degree DESC
		LIMIT $limit
	`

	ClearSessionQuery = `
		MATCH (n:Entity {session_id: $session_id})
		DETACH DELETE n
	`

	// CleanupOldQuery removes entities from abandoned sessions. The
	// cutoff is epoch milliseconds, matching timestamp() above.
	CleanupOldQuery = `
		MATCH (n:Entity)
		WHERE n.created_at < $cutoff
		DETACH DELETE n
		RETURN count(n) AS deleted
	`
)

// ConnectionsQuery returns the neighborhood query for a given traversal
// depth. Variable-length bounds cannot be parameterized in Cypher, so
// the caller-validated depth is formatted in.
func ConnectionsQuery(depth int) string {
	if depth < 1 {
		depth = 1
	}
	if depth > 3 {
		depth = 3
	}
	return fmt.Sprintf(`
		MATCH path = (start:Entity {name: $entity_name, session_id: $session_id})-[*1..%d]-(connected:Entity {session_id: $session_id})
		WHERE start.name <> connected.name
		RETURN DISTINCT connected.name AS entity, length(path) AS distance
		LIMIT $limit
	`, depth)
}
