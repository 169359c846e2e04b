package topic

import (
	"sort"

	"github.com/agenthands/papergraph/internal/core/model"
)

// Communities clusters the entities of a triple set using label
// propagation. Edges are undirected and weighted by how many triples
// connect the same pair. Singleton clusters are dropped; the remainder
// are returned largest first, entities within a cluster ordered by
// degree.
func Communities(triples []model.Triple, maxIterations int) [][]string {
	if len(triples) == 0 {
		return nil
	}
	if maxIterations <= 0 {
		maxIterations = 20
	}

	adj := make(map[string]map[string]int)
	addEdge := func(a, b string) {
		if adj[a] == nil {
			adj[a] = make(map[string]int)
		}
		adj[a][b]++
	}
	for _, t := range triples {
		if t.Head == "" || t.Tail == "" || t.Head == t.Tail {
			continue
		}
		addEdge(t.Head, t.Tail)
		addEdge(t.Tail, t.Head)
	}

	entities := make([]string, 0, len(adj))
	for name := range adj {
		entities = append(entities, name)
	}
	// Deterministic processing order: propagation ties break on label
	// ordering, so the whole run is reproducible.
	sort.Strings(entities)

	labels := make(map[string]string, len(entities))
	for _, e := range entities {
		labels[e] = e
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := 0

		for _, e := range entities {
			neighbors := adj[e]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			max := 0
			for n, weight := range neighbors {
				label := labels[n]
				counts[label] += weight
				if counts[label] > max {
					max = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == max {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[e] != best {
				labels[e] = best
				changed++
			}
		}

		if changed == 0 {
			break
		}
	}

	clusters := make(map[string][]string)
	for entity, label := range labels {
		clusters[label] = append(clusters[label], entity)
	}

	var communities [][]string
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			di, dj := degree(adj, members[i]), degree(adj, members[j])
			if di != dj {
				return di > dj
			}
			return members[i] < members[j]
		})
		communities = append(communities, members)
	}

	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i]) != len(communities[j]) {
			return len(communities[i]) > len(communities[j])
		}
		return communities[i][0] < communities[j][0]
	})

	return communities
}

func degree(adj map[string]map[string]int, entity string) int {
	total := 0
	for _, weight := range adj[entity] {
		total += weight
	}
	return total
}
