package topic

import (
	"context"
	"fmt"
	"strings"

	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/llm"
)

// sampleSize is how many triples to mine for communities. Enough to
// find the dense clusters without pulling the whole graph.
const sampleSize = 500

// Sampler provides triples to mine, typically the pipeline's Sample.
type Sampler interface {
	Sample(ctx context.Context, sessionID string, limit int) ([]model.Triple, error)
}

// Suggester proposes research topics by clustering the session's graph
// and asking the model to name the densest communities.
type Suggester struct {
	sampler Sampler
	llm     llm.Client
}

func NewSuggester(sampler Sampler, client llm.Client) *Suggester {
	return &Suggester{sampler: sampler, llm: client}
}

const namePrompt = `The following entities and relationships form a cluster in a research knowledge graph:

%s

Propose one specific, interesting research topic title covering this cluster.
Return ONLY the title, no explanation.`

// Suggest returns up to max topic suggestions. Naming failures fall
// back to the cluster's most connected entities, so a reachable graph
// always yields suggestions.
func (s *Suggester) Suggest(ctx context.Context, sessionID string, max int) ([]string, error) {
	if max <= 0 {
		max = 5
	}

	triples, err := s.sampler.Sample(ctx, sessionID, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample graph: %w", err)
	}
	if len(triples) == 0 {
		return nil, nil
	}

	communities := Communities(triples, 0)
	if len(communities) > max {
		communities = communities[:max]
	}

	var topics []string
	for _, members := range communities {
		topics = append(topics, s.name(ctx, members, triplesWithin(triples, members)))
	}
	return topics, nil
}

func (s *Suggester) name(ctx context.Context, members []string, related []model.Triple) string {
	var b strings.Builder
	for i, t := range related {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&b, "- %s %s %s\n", t.Head, t.Relation, t.Tail)
	}

	response, err := s.llm.Generate(ctx, fmt.Sprintf(namePrompt, b.String()))
	if err == nil {
		title := strings.Trim(strings.TrimSpace(response), `"'`)
		if title != "" && !strings.Contains(title, "\n") {
			return title
		}
	} else {
		golog.Warnf("topic naming failed: %v", err)
	}

	// Fallback: the cluster's hubs are a serviceable topic by themselves.
	top := members
	if len(top) > 3 {
		top = top[:3]
	}
	return strings.Join(top, " / ")
}

func triplesWithin(triples []model.Triple, members []string) []model.Triple {
	inCluster := make(map[string]struct{}, len(members))
	for _, m := range members {
		inCluster[m] = struct{}{}
	}

	var related []model.Triple
	for _, t := range triples {
		if _, ok := inCluster[t.Head]; !ok {
			continue
		}
		if _, ok := inCluster[t.Tail]; !ok {
			continue
		}
		related = append(related, t)
	}
	return related
}
