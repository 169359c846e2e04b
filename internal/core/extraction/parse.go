package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/papergraph/internal/core/common"
	"github.com/agenthands/papergraph/internal/core/model"
)

type tripleJSON struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}

type knowledgeGraphJSON struct {
	Triples []tripleJSON `json:"triples"`
}

// parseStrategy is one way of recovering triples from a model response.
// Strategies are tried in order and the first success wins; this keeps
// the fallback chain explicit instead of burying it in error handling.
type parseStrategy struct {
	name string
	fn   func(string) ([]model.Triple, error)
}

var parseStrategies = []parseStrategy{
	{"strict", parseStrict},
	{"scan", parseScan},
	{"lines", parseLines},
}

// Parse runs the strategies in order and returns the candidates from
// the first one that succeeds, along with the strategy name. An error
// means every strategy failed and the response must be recorded as
// unparsed. Candidates are NOT yet validated.
func Parse(response string) ([]model.Triple, string, error) {
	for _, s := range parseStrategies {
		triples, err := s.fn(response)
		if err == nil {
			return triples, s.name, nil
		}
	}
	return nil, "", fmt.Errorf("no parse strategy recovered triples from response")
}

// parseStrict expects the response to be exactly the requested JSON
// payload once markdown fences are stripped: either a bare array of
// triples or an object with a "triples" key.
func parseStrict(response string) ([]model.Triple, error) {
	s := common.StripFences(response)

	if strings.HasPrefix(s, "[") {
		var rows []tripleJSON
		if err := json.Unmarshal([]byte(common.FixTrailingCommas(s)), &rows); err != nil {
			return nil, err
		}
		return toTriples(rows), nil
	}

	if strings.HasPrefix(s, "{") {
		var kg knowledgeGraphJSON
		if err := json.Unmarshal([]byte(common.FixTrailingCommas(s)), &kg); err != nil {
			return nil, err
		}
		return toTriples(kg.Triples), nil
	}

	return nil, fmt.Errorf("response is not a JSON payload")
}

// parseScan tolerates prose around the payload: it locates the
// outermost JSON array by bracket scanning and parses that.
func parseScan(response string) ([]model.Triple, error) {
	rows, err := common.ParseJSONArray[tripleJSON](response)
	if err != nil {
		return nil, err
	}
	return toTriples(rows), nil
}

// lineSeparators are tried in order on each line. Multi-character
// separators go first so "->" is not misread as "-".
var lineSeparators = []string{"->", "—", "|", " - "}

// parseLines is the last-resort heuristic: it scans the response line
// by line for "A -> relation -> B" shapes. It fails unless at least one
// triple is recovered.
func parseLines(response string) ([]model.Triple, error) {
	var triples []model.Triple

	for _, line := range strings.Split(response, "\n") {
		line = stripBullet(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		for _, sep := range lineSeparators {
			parts := strings.Split(line, sep)
			if len(parts) != 3 {
				continue
			}
			t := model.Triple{
				Head:     cleanPart(parts[0]),
				Relation: cleanPart(parts[1]),
				Tail:     cleanPart(parts[2]),
			}
			if t.Valid() {
				triples = append(triples, t)
				break
			}
		}
	}

	if len(triples) == 0 {
		return nil, fmt.Errorf("no triple-shaped lines found")
	}
	return triples, nil
}

func toTriples(rows []tripleJSON) []model.Triple {
	triples := make([]model.Triple, 0, len(rows))
	for _, r := range rows {
		triples = append(triples, model.Triple{
			Head:     r.Head,
			Relation: r.Relation,
			Tail:     r.Tail,
		})
	}
	return triples
}

// stripBullet removes list markers such as "- ", "* ", or "3. ".
func stripBullet(line string) string {
	line = strings.TrimLeft(line, "-*• \t")
	if i := strings.IndexAny(line, ". "); i > 0 && i <= 3 {
		if _, err := fmt.Sscanf(line[:i], "%d", new(int)); err == nil {
			line = strings.TrimSpace(line[i+1:])
		}
	}
	return line
}

func cleanPart(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'()[]`)
}
