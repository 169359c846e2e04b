package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/papergraph/internal/driver"
)

// MockDriver answers count queries from a queue, serves canned records
// for everything else, and can fail specific queries.
type MockDriver struct {
	Counts  []int64                    // consumed in order by node/edge count queries
	Records map[string][]*neo4j.Record // canned records keyed by query
	Errs    map[string]error           // forced failures keyed by query

	Queries []string
	Params  []map[string]interface{}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)

	if err, ok := m.Errs[query]; ok {
		return neo4j.EagerResult{}, err
	}

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

	if records, ok := m.Records[query]; ok {
		return neo4j.EagerResult{Records: records}, nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error

	Prompts []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
