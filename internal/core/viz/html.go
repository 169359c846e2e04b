package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/agenthands/papergraph/internal/core/model"
)

type visNode struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type visEdge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var pageTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; background-color: #222222; }
  #graph { width: 100%; height: 100vh; }
</style>
</head>
<body>
<div id="graph"></div>
<script>
  const nodes = new vis.DataSet({{.Nodes}});
  const edges = new vis.DataSet({{.Edges}});
  const container = document.getElementById("graph");
  const options = {
    physics: {
      enabled: true,
      stabilization: { enabled: true, iterations: 100 },
      barnesHut: {
        gravitationalConstant: -2000,
        centralGravity: 0.1,
        springLength: 200,
        springConstant: 0.05
      }
    },
    edges: { arrows: "to", font: { color: "#ffffff", strokeWidth: 0 } },
    nodes: { shape: "dot", font: { color: "#ffffff" } }
  };
  new vis.Network(container, { nodes, edges }, options);
</script>
</body>
</html>
`))

// RenderHTML produces a self-contained interactive visualization of the
// triples. Entities are deduplicated by label; layout and physics are
// delegated to vis-network in the browser.
func RenderHTML(triples []model.Triple, title string) (string, error) {
	if title == "" {
		title = "Knowledge Graph"
	}

	ids := make(map[string]int)
	var nodes []visNode
	nodeID := func(label string) int {
		if id, ok := ids[label]; ok {
			return id
		}
		id := len(nodes)
		ids[label] = id
		nodes = append(nodes, visNode{ID: id, Label: label, Color: "#97c2fc", Size: 20})
		return id
	}

	var edges []visEdge
	for _, t := range triples {
		t = t.Normalize()
		if !t.Valid() {
			continue
		}
		edges = append(edges, visEdge{
			From:  nodeID(t.Head),
			To:    nodeID(t.Tail),
			Label: t.Relation,
			Color: "#848484",
		})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return "", fmt.Errorf("failed to marshal edges: %w", err)
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, map[string]interface{}{
		"Title": title,
		"Nodes": template.JS(nodesJSON),
		"Edges": template.JS(edgesJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render graph page: %w", err)
	}
	return buf.String(), nil
}
