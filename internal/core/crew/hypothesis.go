package crew

import (
	"context"
	"fmt"

	"github.com/agenthands/papergraph/internal/core/qa"
	"github.com/agenthands/papergraph/internal/llm"
)

// GraphQueryTool exposes the Cypher-QA chain to agents.
type GraphQueryTool struct {
	chain     *qa.Chain
	sessionID string
}

func NewGraphQueryTool(chain *qa.Chain, sessionID string) *GraphQueryTool {
	return &GraphQueryTool{chain: chain, sessionID: sessionID}
}

func (t *GraphQueryTool) Name() string {
	return "Graph RAG Search"
}

func (t *GraphQueryTool) Description() string {
	return "queries the knowledge graph for relationships, connections, and specific facts; input is a specific question about entities or concepts in the graph"
}

func (t *GraphQueryTool) Run(ctx context.Context, input string) (string, error) {
	answer, err := t.chain.Ask(ctx, t.sessionID, input)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// NewHypothesisCrew assembles the research crew: an analyst maps the
// topic from the graph, a detective hunts for structural tensions, a
// scientist proposes a hypothesis resolving them, a reviewer critiques
// it, and the scientist revises against the critique.
func NewHypothesisCrew(client llm.Client, graphTool Tool, topic, domain string) *Crew {
	analyst := &Agent{
		Role: fmt.Sprintf("Senior %s Analyst", domain),
		Goal: fmt.Sprintf("Deconstruct the topic %q into its fundamental structural components and mechanisms based strictly on the knowledge graph.", topic),
		Backstory: fmt.Sprintf("You are an expert taxonomist and analyst in the field of %s. "+
			"Your strength is breaking down complex systems into their atomic parts. "+
			"You do not just summarize; you map the architecture of concepts. "+
			"You strictly rely on the provided knowledge graph.", domain),
		Tools: []Tool{graphTool},
	}

	detective := &Agent{
		Role: "Structural Paradox Detective",
		Goal: "Identify theoretical tensions, trade-offs, or contradictions between the mapped concepts.",
		Backstory: fmt.Sprintf("You are a critical thinker who looks for logical friction in %s. "+
			"You look for resource contradictions (mechanism A requires X, mechanism B destroys X), "+
			"scale mismatches, and conflicting objectives. "+
			"You ignore the happy path and hunt for the problems.", domain),
		Tools: []Tool{graphTool},
	}

	scientist := &Agent{
		Role: fmt.Sprintf("Lead %s Researcher", domain),
		Goal: "Propose a novel theoretical mechanism or framework that resolves the identified paradox.",
		Backstory: fmt.Sprintf("You are a visionary in %s. You excel at dialectical synthesis: "+
			"taking two opposing concepts found by the detective and creating a new solution. "+
			"Your hypotheses are grounded in the graph data, architecturally precise, "+
			"and aimed at the specific friction identified.", domain),
	}

	reviewer := &Agent{
		Role: fmt.Sprintf("Distinguished Reviewer (Top-Tier %s Journal)", domain),
		Goal: "Rigorously critique the hypothesis for novelty, feasibility, and theoretical soundness.",
		Backstory: fmt.Sprintf("You are a notoriously difficult reviewer for the top journals in %s. "+
			"You reject ideas that are derivative, vague, or illogical. "+
			"You force the scientist to be precise.", domain),
	}

	mapping := &Task{
		Description: fmt.Sprintf("Query the graph for %q. Deconstruct the topic into its core mechanisms "+
			"and components. Output a structured list of active components (who is acting), "+
			"rules and processes (how they act), and constraints (what limits them).", topic),
		ExpectedOutput: fmt.Sprintf("A structural breakdown of the %s concepts related to %s.", domain, topic),
		Agent:          analyst,
	}

	friction := &Task{
		Description: "Review the components from the analysis. Identify a systemic tension: " +
			"find two components or rules that work against each other. " +
			"Ask where the system breaks or becomes inefficient. Output the specific conflict clearly.",
		ExpectedOutput: "A defined structural paradox or trade-off between two entities.",
		Agent:          detective,
		Context:        []*Task{mapping},
	}

	hypothesis := &Task{
		Description: "Propose a novel solution to the tension that was found. Do not just say " +
			"'combine them': propose a specific mechanism that bridges the gap. " +
			"Title it: 'The [Mechanism] Hypothesis'.",
		ExpectedOutput: "A detailed hypothesis with a proposed resolution mechanism.",
		Agent:          scientist,
		Context:        []*Task{friction},
	}

	review := &Task{
		Description: fmt.Sprintf("Critique the hypothesis. If it fails your high standards for %s research, "+
			"explain exactly why: name the lossy steps, the unstable assumptions, the missing mechanisms. "+
			"If it passes, refine the terminology to match the highest academic standards of the field.", domain),
		ExpectedOutput: "A final critique or a polished, submission-ready hypothesis.",
		Agent:          reviewer,
		Context:        []*Task{hypothesis},
	}

	revision := &Task{
		Description: "You have received the reviewer's critique of your hypothesis. " +
			"Rewrite the hypothesis to solve each specific problem the reviewer raised, " +
			"naming the mechanism that addresses each one. Give the revised hypothesis a new title.",
		ExpectedOutput: "A revised, rigorous hypothesis that addresses every point of the critique.",
		Agent:          scientist,
		Context:        []*Task{hypothesis, review},
	}

	return New(client, mapping, friction, hypothesis, review, revision)
}
