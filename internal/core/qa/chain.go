package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/driver"
	"github.com/agenthands/papergraph/internal/llm"
)

// Answer is the result of a natural-language graph query.
type Answer struct {
	Text   string `json:"text"`
	Cypher string `json:"cypher,omitempty"`
	Rows   int    `json:"rows"`
}

// Chain implements the Cypher-QA flow: the model writes a Cypher query
// for the question, the query runs against the graph, and the model
// composes an answer from the rows. A repair pass and a direct keyword
// lookup cover the common ways generated Cypher goes wrong.
type Chain struct {
	driver driver.GraphDriver
	llm    llm.Client
}

func NewChain(d driver.GraphDriver, client llm.Client) *Chain {
	return &Chain{driver: d, llm: client}
}

const cypherPrompt = `You are a Neo4j Cypher expert. Write one Cypher query that answers the question below.

Graph schema: every node has the label Entity with properties name and session_id.
Every relationship has type RELATION with properties type and session_id.
Pattern: (n:Entity {name: 'entity name'})-[r:RELATION]-(m:Entity)

Rules:
- Read-only: MATCH and RETURN only.
- EVERY matched node must filter session_id = $session_id (the parameter is bound at execution).
- Use toLower(...) CONTAINS for fuzzy name matching.

Question: %s

Return ONLY the Cypher query, no explanation, no markdown.`

const answerPrompt = `Answer the question using ONLY the rows returned from a knowledge graph query.

Question: %s

Rows:
%s

Answer concisely in plain prose. If the rows do not contain the answer, say so.`

const emptyGraphMessage = "The knowledge graph is empty. Upload and process documents first to populate it."

// Ask answers a natural-language question against the session's graph.
func (c *Chain) Ask(ctx context.Context, sessionID, question string) (Answer, error) {
	nodes, err := c.nodeCount(ctx, sessionID)
	if err != nil {
		return Answer{}, fmt.Errorf("graph unreachable: %w", err)
	}
	if nodes == 0 {
		return Answer{Text: emptyGraphMessage}, nil
	}

	cypher := c.generateCypher(ctx, question)
	var rows []map[string]interface{}

	if cypher != "" {
		rows, err = c.run(ctx, sessionID, cypher)
		if err != nil || len(rows) == 0 {
			if fixed := FixCypher(cypher); fixed != cypher {
				golog.Debugf("retrying with repaired cypher: %s", fixed)
				if fixedRows, fixedErr := c.run(ctx, sessionID, fixed); fixedErr == nil && len(fixedRows) > 0 {
					rows, cypher = fixedRows, fixed
				}
			}
		}
	}

	if len(rows) == 0 {
		rows = c.directLookup(ctx, sessionID, question)
		cypher = ""
	}

	if len(rows) == 0 {
		return Answer{
			Text: fmt.Sprintf("I couldn't find information about %q in the knowledge graph. "+
				"Try asking about specific entities or relationships from your documents.", question),
		}, nil
	}

	text, err := c.llm.Generate(ctx, fmt.Sprintf(answerPrompt, question, formatRows(rows)))
	if err != nil {
		// The rows themselves are still an answer of sorts.
		golog.Warnf("answer composition failed: %v", err)
		text = formatRows(rows)
	}

	return Answer{Text: strings.TrimSpace(text), Cypher: cypher, Rows: len(rows)}, nil
}

func (c *Chain) generateCypher(ctx context.Context, question string) string {
	response, err := c.llm.Generate(ctx, fmt.Sprintf(cypherPrompt, question))
	if err != nil {
		golog.Warnf("cypher generation failed: %v", err)
		return ""
	}

	cypher := ExtractCypher(response)
	if cypher == "" {
		golog.Debugf("no cypher found in response: %s", response)
		return ""
	}
	if !ReadOnly(cypher) {
		golog.Warnf("rejecting generated cypher with write clauses: %s", cypher)
		return ""
	}
	return cypher
}

func (c *Chain) run(ctx context.Context, sessionID, cypher string) ([]map[string]interface{}, error) {
	result, err := c.driver.ExecuteQuery(ctx, cypher, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(result.Records))
	for _, rec := range result.Records {
		row := make(map[string]interface{}, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			row[key] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

const directLookupQuery = `
	MATCH (h:Entity {session_id: $session_id})-[r:RELATION]->(t:Entity {session_id: $session_id})
	WHERE toLower(h.name) CONTAINS toLower($term) OR toLower(t.name) CONTAINS toLower($term)
	RETURN h.name AS head, r.type AS relation, t.name AS tail
	LIMIT 25
`

// directLookup is the fallback when generated Cypher yields nothing:
// look up triples mentioning the question's key terms directly.
func (c *Chain) directLookup(ctx context.Context, sessionID, question string) []map[string]interface{} {
	var rows []map[string]interface{}
	seen := make(map[string]struct{})

	for _, term := range keyTerms(question, 3) {
		result, err := c.driver.ExecuteQuery(ctx, directLookupQuery, map[string]interface{}{
			"session_id": sessionID,
			"term":       term,
		})
		if err != nil {
			golog.Warnf("direct lookup for %q failed: %v", term, err)
			continue
		}
		for _, rec := range result.Records {
			head, _ := rec.Get("head")
			relation, _ := rec.Get("relation")
			tail, _ := rec.Get("tail")
			key := fmt.Sprintf("%v|%v|%v", head, relation, tail)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rows = append(rows, map[string]interface{}{
				"head": head, "relation": relation, "tail": tail,
			})
		}
	}
	return rows
}

func (c *Chain) nodeCount(ctx context.Context, sessionID string) (int64, error) {
	result, err := c.driver.ExecuteQuery(ctx, driver.NodeCountQuery, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	value, _ := result.Records[0].Get("count")
	n, _ := value.(int64)
	return n, nil
}

// formatRows renders result rows as plain "key: value" lines for the
// answer prompt, capped to keep the prompt bounded.
func formatRows(rows []map[string]interface{}) string {
	const maxRows = 30
	var b strings.Builder
	for i, row := range rows {
		if i >= maxRows {
			fmt.Fprintf(&b, "... and %d more rows\n", len(rows)-maxRows)
			break
		}
		parts := make([]string, 0, len(row))
		for k, v := range row {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

var stopwords = map[string]struct{}{
	"what": {}, "which": {}, "where": {}, "when": {}, "does": {}, "how": {},
	"the": {}, "and": {}, "that": {}, "with": {}, "about": {}, "between": {},
	"relationship": {}, "relationships": {}, "entity": {}, "entities": {},
	"graph": {}, "know": {}, "tell": {}, "show": {}, "list": {}, "find": {},
}

// keyTerms extracts up to max content words from the question.
func keyTerms(question string, max int) []string {
	var terms []string
	for _, word := range strings.Fields(question) {
		word = strings.Trim(strings.ToLower(word), `.,?!:;"'()`)
		if len(word) < 4 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		terms = append(terms, word)
		if len(terms) == max {
			break
		}
	}
	return terms
}
